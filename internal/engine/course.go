package engine

import (
	"context"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/progression"
)

// CompleteLesson marks a lesson read. Repeats are no-ops.
func (e *Engine) CompleteLesson(ctx context.Context, instanceID string, module, lesson int) (*Result, error) {
	res, _, err := e.mutate(ctx, "complete lesson", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.CompleteLesson(inst, module, lesson)
	})
	return res, err
}

// SubmitQuiz records a graded quiz. A failing score keeps the module open
// and asks for competency feedback.
func (e *Engine) SubmitQuiz(ctx context.Context, instanceID string, module, score, total int) (*Result, error) {
	res, out, err := e.mutate(ctx, "submit quiz", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.RecordQuizResult(inst, module, score, total)
	})
	if err != nil {
		return nil, err
	}
	if out.NeedsFeedback {
		res.Requests = append(res.Requests, Request{
			Kind:        RequestCompetencyFeedback,
			InstanceID:  res.Instance.ID,
			LearnerID:   res.Instance.LearnerID,
			CourseTitle: res.Instance.Title,
			Module:      module,
			ModuleTitle: res.Instance.Modules[module].Title,
			Objectives:  res.Instance.Modules[module].Objectives,
			Score:       score,
			Total:       total,
		})
	}
	return res, nil
}

// SubmitQuizAnswers grades answers against the module quiz and records the
// score.
func (e *Engine) SubmitQuizAnswers(ctx context.Context, instanceID string, module int, answers []int) (*Result, error) {
	inst, err := e.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	m, err := inst.Module(module)
	if err != nil {
		return nil, err
	}
	score, total, err := m.Grade(answers)
	if err != nil {
		return nil, err
	}
	return e.SubmitQuiz(ctx, instanceID, module, score, total)
}

// RecordCompetencyFeedback stores collaborator feedback for a failed quiz.
func (e *Engine) RecordCompetencyFeedback(ctx context.Context, instanceID string, module int, feedback string) (*Result, error) {
	res, _, err := e.mutate(ctx, "record competency feedback", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.RecordCompetencyFeedback(inst, module, feedback)
	})
	return res, err
}

// SubmitModuleForReview moves an open module to pending_review.
func (e *Engine) SubmitModuleForReview(ctx context.Context, instanceID string, module int) (*Result, error) {
	res, _, err := e.mutate(ctx, "submit module for review", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.SubmitForReview(inst, module)
	})
	return res, err
}

// ResolveModuleReview approves or rejects a module in pending_review.
func (e *Engine) ResolveModuleReview(ctx context.Context, instanceID string, module int, approved bool) (*Result, error) {
	res, _, err := e.mutate(ctx, "resolve module review", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.ResolveReview(inst, module, approved)
	})
	return res, err
}

// SubmitProject records the learner's final project submission.
func (e *Engine) SubmitProject(ctx context.Context, instanceID string, sub course.ProjectSubmission) (*Result, error) {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = e.now()
	}
	res, _, err := e.mutate(ctx, "submit project", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.SubmitProject(inst, sub)
	})
	return res, err
}

// EvaluateProject stores an admin or AI evaluation of the submitted
// project.
func (e *Engine) EvaluateProject(ctx context.Context, instanceID string, eval course.ProjectEvaluation) (*Result, error) {
	if eval.EvaluatedAt.IsZero() {
		eval.EvaluatedAt = e.now()
	}
	res, _, err := e.mutate(ctx, "evaluate project", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.RecordProjectEvaluation(inst, eval)
	})
	return res, err
}

// AddRemedialLesson attaches a generated remedial lesson.
func (e *Engine) AddRemedialLesson(ctx context.Context, instanceID string, lesson course.RemedialLesson) (*Result, error) {
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = e.now()
	}
	res, _, err := e.mutate(ctx, "add remedial lesson", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.AddRemedialLesson(inst, lesson)
	})
	return res, err
}

// RecordTutorMessage appends to the course tutor chat.
func (e *Engine) RecordTutorMessage(ctx context.Context, instanceID string, msg course.TutorMessage) (*Result, error) {
	if msg.At.IsZero() {
		msg.At = e.now()
	}
	res, _, err := e.mutate(ctx, "record tutor message", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return progression.AppendTutorMessage(inst, msg)
	})
	return res, err
}

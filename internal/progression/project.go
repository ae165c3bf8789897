package progression

import (
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
)

// SubmitProject stores the learner's final project and puts the course in
// pending_review. A second submission is a no-op unless the last
// evaluation fell below the approval score, in which case it replaces the
// submission as a revision and clears that evaluation. Only the first
// submission is rewarded. A completed course rejects submissions.
func SubmitProject(inst *course.Instance, sub course.ProjectSubmission) (course.Progress, Outcome, error) {
	if inst.FinalProject == nil {
		return inst.Progress, Outcome{}, course.ErrNoFinalProject
	}
	if err := projectLocked("submit project", inst.Progress); err != nil {
		return inst.Progress, Outcome{}, err
	}
	if err := sub.Validate(); err != nil {
		return inst.Progress, Outcome{}, err
	}

	prev := inst.Progress
	if prev.ProjectSubmission != nil && (prev.ProjectEvaluation == nil || prev.ProjectEvaluation.Approved()) {
		return prev, Outcome{}, nil
	}

	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}

	p := prev.Clone()
	p.ProjectSubmission = &sub
	p.ProjectEvaluation = nil

	out := Outcome{Changed: true}
	if p.CompletedItems.Add(course.ProjectSubmittedKey) {
		out.emit(rewards.ProjectSubmitted())
	}
	p.Status = CourseStatus(inst, p)
	return p, out, nil
}

// RecordProjectEvaluation stores an admin evaluation of the submitted
// project. The evaluation is kept whatever the score; only an approving
// score can count toward course completion, and only the first approval of
// the instance is rewarded, however many evaluations follow.
func RecordProjectEvaluation(inst *course.Instance, eval course.ProjectEvaluation) (course.Progress, Outcome, error) {
	if inst.FinalProject == nil {
		return inst.Progress, Outcome{}, course.ErrNoFinalProject
	}
	if err := projectLocked("evaluate project", inst.Progress); err != nil {
		return inst.Progress, Outcome{}, err
	}
	if inst.Progress.ProjectSubmission == nil {
		return inst.Progress, Outcome{}, course.ErrProjectNotSubmitted
	}
	if err := eval.Validate(); err != nil {
		return inst.Progress, Outcome{}, err
	}
	if eval.EvaluatedAt.IsZero() {
		eval.EvaluatedAt = time.Now().UTC()
	}

	p := inst.Progress.Clone()
	p.ProjectEvaluation = &eval

	out := Outcome{Changed: true}
	if eval.Approved() && p.CompletedItems.Add(course.ProjectApprovedKey) {
		out.emit(rewards.ProjectEvaluated(eval.OverallScore))
	}
	p.Status = CourseStatus(inst, p)
	return p, out, nil
}

// projectLocked rejects project changes once the final exam is passed;
// completed is terminal.
func projectLocked(op string, p course.Progress) error {
	if p.Status == course.StatusCompleted || p.FinalExam.Status == course.ExamPassed {
		return &course.ExamStateError{Op: op, Status: course.ExamPassed}
	}
	return nil
}

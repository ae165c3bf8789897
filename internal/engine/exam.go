package engine

import (
	"context"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/exam"
	"github.com/abhisek/skillpath/internal/progression"
)

// RecordExamTurn appends one exchange to the current exam attempt.
func (e *Engine) RecordExamTurn(ctx context.Context, instanceID string, turn course.ExamTurn) (*Result, error) {
	res, _, err := e.mutate(ctx, "record exam turn", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return exam.RecordTurn(inst, turn)
	})
	return res, err
}

// SendExamVerdict consumes the grader's verdict for the current attempt.
// The last failed attempt asks for a remediation plan.
func (e *Engine) SendExamVerdict(ctx context.Context, instanceID string, v course.Verdict) (*Result, error) {
	res, out, err := e.mutate(ctx, "send exam verdict", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return exam.ApplyVerdict(inst, v)
	})
	if err != nil {
		return nil, err
	}
	if out.NeedsRemediationPlan {
		state := res.Instance.Progress.FinalExam
		req := Request{
			Kind:        RequestRemediationPlan,
			InstanceID:  res.Instance.ID,
			LearnerID:   res.Instance.LearnerID,
			CourseTitle: res.Instance.Title,
			ExamHistory: state.History,
		}
		if state.LastFeedback != nil {
			req.ExamFeedback = *state.LastFeedback
		}
		res.Requests = append(res.Requests, req)
	}
	return res, nil
}

// SetRemediationPlan stores the study plan of a failed exam cycle.
func (e *Engine) SetRemediationPlan(ctx context.Context, instanceID, plan string) (*Result, error) {
	res, _, err := e.mutate(ctx, "set remediation plan", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return exam.SetRemediationPlan(inst, plan)
	})
	return res, err
}

// ResetExamCycle restores three attempts once remediation is ready.
func (e *Engine) ResetExamCycle(ctx context.Context, instanceID string) (*Result, error) {
	res, _, err := e.mutate(ctx, "reset exam cycle", instanceID, func(inst *course.Instance) (course.Progress, progression.Outcome, error) {
		return exam.Reset(inst)
	})
	return res, err
}

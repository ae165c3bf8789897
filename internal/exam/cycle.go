// Package exam implements the final exam attempt cycle: a bounded number
// of graded attempts, then a remediation gate that must be cleared before
// the attempts are restored.
package exam

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/progression"
	"github.com/abhisek/skillpath/internal/rewards"
)

// RecordTurn appends one exchange of the conversational exam and marks the
// attempt in progress.
func RecordTurn(inst *course.Instance, turn course.ExamTurn) (course.Progress, progression.Outcome, error) {
	const op = "record exam turn"

	if err := turn.Validate(); err != nil {
		return inst.Progress, progression.Outcome{}, err
	}
	state := inst.Progress.FinalExam
	switch state.Status {
	case course.ExamPassed:
		return inst.Progress, progression.Outcome{}, &course.ExamStateError{Op: op, Status: state.Status}
	case course.ExamFailedRemediationNeeded:
		return inst.Progress, progression.Outcome{}, fmt.Errorf("%s: %w", op, course.ErrAttemptsExhausted)
	}
	if !progression.ExamEligible(inst, inst.Progress) {
		return inst.Progress, progression.Outcome{}, fmt.Errorf("%s: %w", op, course.ErrExamNotEligible)
	}

	p := inst.Progress.Clone()
	p.FinalExam.History = append(p.FinalExam.History, turn)
	p.FinalExam.Status = course.ExamInProgress
	return p, progression.Outcome{Changed: true}, nil
}

// ApplyVerdict consumes the grader's decision for the current attempt.
//
// A pass is terminal. A fail spends one attempt: with attempts left the
// cycle returns to not_started with an empty history, otherwise it freezes
// in failed_remediation_needed and asks for a remediation plan. A verdict
// after a pass is a no-op.
func ApplyVerdict(inst *course.Instance, v course.Verdict) (course.Progress, progression.Outcome, error) {
	const op = "apply exam verdict"

	state := inst.Progress.FinalExam
	if state.Status == course.ExamPassed {
		return inst.Progress, progression.Outcome{}, nil
	}
	if state.Status == course.ExamFailedRemediationNeeded || state.AttemptsLeft <= 0 {
		return inst.Progress, progression.Outcome{}, fmt.Errorf("%s: %w", op, course.ErrAttemptsExhausted)
	}
	if !progression.ExamEligible(inst, inst.Progress) {
		return inst.Progress, progression.Outcome{}, fmt.Errorf("%s: %w", op, course.ErrExamNotEligible)
	}

	p := inst.Progress.Clone()
	feedback := v.Feedback
	p.FinalExam.LastFeedback = &feedback

	out := progression.Outcome{Changed: true}
	if v.Passed {
		p.FinalExam.Status = course.ExamPassed
		out.Events = append(out.Events, rewards.ExamPassed())
		p.Status = progression.CourseStatus(inst, p)
		return p, out, nil
	}

	p.FinalExam.AttemptsLeft--
	if p.FinalExam.AttemptsLeft > 0 {
		p.FinalExam.Status = course.ExamNotStarted
		p.FinalExam.History = []course.ExamTurn{}
		return p, out, nil
	}

	p.FinalExam.Status = course.ExamFailedRemediationNeeded
	out.NeedsRemediationPlan = true
	return p, out, nil
}

// SetRemediationPlan stores the generated study plan of a failed cycle.
// The first plan wins; later plans are ignored.
func SetRemediationPlan(inst *course.Instance, plan string) (course.Progress, progression.Outcome, error) {
	const op = "set remediation plan"

	state := inst.Progress.FinalExam
	if state.Status != course.ExamFailedRemediationNeeded {
		return inst.Progress, progression.Outcome{}, &course.ExamStateError{Op: op, Status: state.Status}
	}
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return inst.Progress, progression.Outcome{}, &course.ValidationError{Field: "remediation plan", Reason: "must not be empty"}
	}
	if state.RemediationPlan != nil {
		return inst.Progress, progression.Outcome{}, nil
	}

	p := inst.Progress.Clone()
	p.FinalExam.RemediationPlan = &plan
	return p, progression.Outcome{Changed: true}, nil
}

// Reset restores a fresh attempt cycle. It is only allowed once a failed
// cycle has its remediation plan; the plan is cleared.
func Reset(inst *course.Instance) (course.Progress, progression.Outcome, error) {
	state := inst.Progress.FinalExam
	if state.Status != course.ExamFailedRemediationNeeded || state.RemediationPlan == nil {
		return inst.Progress, progression.Outcome{}, fmt.Errorf("reset exam cycle (status %s): %w", state.Status, course.ErrRemediationNotReady)
	}

	p := inst.Progress.Clone()
	p.FinalExam = course.NewExamState()
	return p, progression.Outcome{Changed: true}, nil
}

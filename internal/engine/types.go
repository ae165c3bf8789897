package engine

import (
	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/notify"
	"github.com/abhisek/skillpath/internal/progression"
)

// RequestKind names a follow-up the engine wants from an AI collaborator.
type RequestKind string

const (
	// RequestCompetencyFeedback asks for remedial feedback on a failed quiz.
	RequestCompetencyFeedback RequestKind = "competency_feedback"
	// RequestRemediationPlan asks for a study plan after the last failed
	// exam attempt.
	RequestRemediationPlan RequestKind = "remediation_plan"
)

// Request is handed back to the caller; the engine never waits for it.
// Results come back through RecordCompetencyFeedback and
// SetRemediationPlan.
type Request struct {
	Kind        RequestKind
	InstanceID  string
	LearnerID   string
	CourseTitle string

	// Quiz feedback fields.
	Module      int
	ModuleTitle string
	Objectives  []string
	Score       int
	Total       int

	// Remediation plan fields.
	ExamFeedback string
	ExamHistory  []course.ExamTurn
}

// Result is what every mutating operation returns.
type Result struct {
	Instance *course.Instance
	Learner  *course.Learner

	// Changed is false for idempotent repeats; nothing was persisted.
	Changed       bool
	XPGained      int
	Transitions   []progression.Transition
	Notifications []notify.Notification
	Requests      []Request
}

// Progress is a shortcut for r.Instance.Progress.
func (r *Result) Progress() course.Progress {
	if r.Instance == nil {
		return course.Progress{}
	}
	return r.Instance.Progress
}

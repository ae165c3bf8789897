package llm

import "context"

// Purpose names the tutor call a request serves. It labels request logs
// and selects scripted MockProvider responses.
type Purpose string

const (
	PurposeCompetencyFeedback Purpose = "competency-feedback"
	PurposeRemediationPlan    Purpose = "remediation-plan"
	PurposeRemedialLesson     Purpose = "remedial-lesson"
	PurposeExamQuestion       Purpose = "exam-question"
	PurposeExamVerdict        Purpose = "exam-verdict"
	PurposeProjectEvaluation  Purpose = "project-evaluation"
	PurposeTutorChat          Purpose = "tutor-chat"
	PurposePing               Purpose = "ping"

	purposeUnknown Purpose = "unknown"
)

// Subject identifies the learner and course instance a request is about.
// Adapters that support end-user attribution forward LearnerID.
type Subject struct {
	LearnerID string
	CourseID  string
}

type ctxKey int

const (
	purposeKey ctxKey = iota
	subjectKey
)

func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, p)
}

// PurposeFrom returns the purpose set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey).(Purpose); ok && p != "" {
		return p
	}
	return purposeUnknown
}

func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey, s)
}

// SubjectFrom returns the subject set by WithSubject; the zero Subject when
// the request is not tied to a learner.
func SubjectFrom(ctx context.Context) Subject {
	s, _ := ctx.Value(subjectKey).(Subject)
	return s
}

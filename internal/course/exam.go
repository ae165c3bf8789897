package course

// ExamStatus is the state of the final exam attempt cycle.
type ExamStatus string

const (
	ExamNotStarted              ExamStatus = "not_started"
	ExamInProgress              ExamStatus = "in_progress"
	ExamPassed                  ExamStatus = "passed"
	ExamFailedRemediationNeeded ExamStatus = "failed_remediation_needed"
)

// MaxExamAttempts is the number of attempts per remediation cycle.
const MaxExamAttempts = 3

// ExamRole identifies who authored an exam turn.
type ExamRole string

const (
	ExamRoleExaminer ExamRole = "examiner"
	ExamRoleLearner  ExamRole = "learner"
)

// ExamTurn is one exchange in the conversational exam.
type ExamTurn struct {
	Role    ExamRole `json:"role" validate:"oneof=examiner learner"`
	Content string   `json:"content" validate:"required"`
}

// Validate checks the turn before it is appended to the history.
func (t ExamTurn) Validate() error {
	if err := validate.Struct(t); err != nil {
		return structError("exam turn", err)
	}
	return nil
}

// Verdict is the grader's decision on an exam attempt.
type Verdict struct {
	Passed   bool   `json:"passed"`
	Feedback string `json:"feedback"`
}

// ExamState tracks attempts for the final exam.
type ExamState struct {
	Status          ExamStatus `json:"status"`
	AttemptsLeft    int        `json:"attempts_left"`
	History         []ExamTurn `json:"history"`
	RemediationPlan *string    `json:"remediation_plan,omitempty"`
	LastFeedback    *string    `json:"last_feedback,omitempty"`
}

// NewExamState returns the state of a fresh attempt cycle.
func NewExamState() ExamState {
	return ExamState{
		Status:       ExamNotStarted,
		AttemptsLeft: MaxExamAttempts,
		History:      []ExamTurn{},
	}
}

// AttemptNumber is the 1-based number shown as "attempt N of 3".
func (s ExamState) AttemptNumber() int {
	n := MaxExamAttempts + 1 - s.AttemptsLeft
	if n > MaxExamAttempts {
		return MaxExamAttempts
	}
	if n < 1 {
		return 1
	}
	return n
}

// Clone returns a deep copy of s.
func (s ExamState) Clone() ExamState {
	out := s
	out.History = append([]ExamTurn{}, s.History...)
	if s.RemediationPlan != nil {
		plan := *s.RemediationPlan
		out.RemediationPlan = &plan
	}
	if s.LastFeedback != nil {
		fb := *s.LastFeedback
		out.LastFeedback = &fb
	}
	return out
}

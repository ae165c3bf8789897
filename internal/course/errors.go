package course

import (
	"errors"
	"fmt"
)

// Sentinel errors for the progression engine. Typed errors below wrap them
// with context, so callers match with errors.Is.
var (
	ErrDuplicateEnrollment = errors.New("learner already enrolled in course template")
	ErrInvalidModuleState  = errors.New("invalid module state")
	ErrExamNotEligible     = errors.New("final exam not eligible")
	ErrRemediationNotReady = errors.New("remediation plan not ready")
	ErrAttemptsExhausted   = errors.New("final exam attempts exhausted")
	ErrInvalidExamState    = errors.New("invalid final exam state")
	ErrNoFinalProject      = errors.New("course has no final project")
	ErrProjectNotSubmitted = errors.New("final project not submitted")
	ErrInvalidInput        = errors.New("invalid input")
)

// DuplicateEnrollmentError reports a second enrollment for the same
// (learner, template) pair. InstanceID names the existing instance.
type DuplicateEnrollmentError struct {
	LearnerID  string
	TemplateID string
	InstanceID string
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("learner %s already enrolled in template %s (instance %s)",
		e.LearnerID, e.TemplateID, e.InstanceID)
}

func (e *DuplicateEnrollmentError) Unwrap() error { return ErrDuplicateEnrollment }

// ModuleStateError reports an operation against a module whose status
// does not allow it.
type ModuleStateError struct {
	Op     string
	Module int
	Status ModuleStatus
}

func (e *ModuleStateError) Error() string {
	return fmt.Sprintf("%s: module %d is %s", e.Op, e.Module, e.Status)
}

func (e *ModuleStateError) Unwrap() error { return ErrInvalidModuleState }

// ExamStateError reports an exam operation not allowed in the current
// exam status.
type ExamStateError struct {
	Op     string
	Status ExamStatus
}

func (e *ExamStateError) Error() string {
	return fmt.Sprintf("%s: final exam is %s", e.Op, e.Status)
}

func (e *ExamStateError) Unwrap() error { return ErrInvalidExamState }

// ValidationError reports a malformed inbound value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

package progression

import (
	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
)

// Trigger names what caused a module transition.
type Trigger string

const (
	TriggerQuizPassed     Trigger = "quiz-passed"
	TriggerPreviousDone   Trigger = "previous-completed"
	TriggerReviewSubmit   Trigger = "review-submitted"
	TriggerReviewApproved Trigger = "review-approved"
	TriggerReviewRejected Trigger = "review-rejected"
)

// Transition records a module status change for display and logging.
type Transition struct {
	Module  int
	From    course.ModuleStatus
	To      course.ModuleStatus
	Trigger Trigger
}

// Outcome describes what an operation did besides returning the new
// progress. A zero Outcome means nothing changed.
type Outcome struct {
	Changed     bool
	Transitions []Transition

	// Events are the reward events of first-time transitions only.
	Events []rewards.Event

	// NeedsFeedback asks for competency feedback on a failed quiz.
	NeedsFeedback bool
	// NeedsRemediationPlan asks for a study plan after the last failed attempt.
	NeedsRemediationPlan bool
}

func (o *Outcome) move(p *course.Progress, module int, to course.ModuleStatus, trigger Trigger) {
	from := p.ModuleStatus[module]
	if from == to {
		return
	}
	p.ModuleStatus[module] = to
	o.Transitions = append(o.Transitions, Transition{Module: module, From: from, To: to, Trigger: trigger})
	o.Changed = true
}

func (o *Outcome) emit(ev rewards.Event) {
	o.Events = append(o.Events, ev)
}

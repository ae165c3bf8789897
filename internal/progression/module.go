package progression

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
)

// CompleteLesson marks a lesson done. Completing a lesson a second time is
// a no-op. Lessons of locked or completed modules cannot be completed.
func CompleteLesson(inst *course.Instance, module, lesson int) (course.Progress, Outcome, error) {
	m, err := inst.Module(module)
	if err != nil {
		return inst.Progress, Outcome{}, err
	}
	if lesson < 0 || lesson >= len(m.Lessons) {
		return inst.Progress, Outcome{}, &course.ValidationError{
			Field:  "lesson",
			Reason: fmt.Sprintf("index %d out of range (module %d has %d lessons)", lesson, module, len(m.Lessons)),
		}
	}

	key := course.LessonKey(module, lesson)
	if inst.Progress.CompletedItems.Has(key) {
		return inst.Progress, Outcome{}, nil
	}

	switch status := inst.Progress.ModuleStatus[module]; status {
	case course.ModuleInProgress, course.ModulePendingReview:
	default:
		return inst.Progress, Outcome{}, &course.ModuleStateError{Op: "complete lesson", Module: module, Status: status}
	}

	p := inst.Progress.Clone()
	p.CompletedItems.Add(key)

	var out Outcome
	out.Changed = true
	out.emit(rewards.LessonCompleted(key))
	return p, out, nil
}

// RecordQuizResult stores a quiz score for an in-progress module. A passing
// score completes the module and unlocks the next one; a failing score
// leaves the module open and asks for competency feedback.
func RecordQuizResult(inst *course.Instance, module, score, total int) (course.Progress, Outcome, error) {
	if _, err := inst.Module(module); err != nil {
		return inst.Progress, Outcome{}, err
	}
	if total <= 0 {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "quiz total", Reason: fmt.Sprintf("%d must be positive", total)}
	}
	if score < 0 || score > total {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "quiz score", Reason: fmt.Sprintf("%d outside 0..%d", score, total)}
	}
	if status := inst.Progress.ModuleStatus[module]; status != course.ModuleInProgress {
		return inst.Progress, Outcome{}, &course.ModuleStateError{Op: "record quiz result", Module: module, Status: status}
	}

	p := inst.Progress.Clone()
	p.QuizScores[module] = course.QuizScore{Score: score, Total: total}

	out := Outcome{Changed: true}
	if !course.QuizPassed(score, total) {
		out.NeedsFeedback = true
		return p, out, nil
	}

	out.move(&p, module, course.ModuleCompleted, TriggerQuizPassed)
	unlockNext(&p, &out, module)
	out.emit(rewards.QuizPassed(fmt.Sprintf("m%d_quiz", module), score, total))
	p.Status = CourseStatus(inst, p)
	return p, out, nil
}

// RecordCompetencyFeedback attaches generated feedback to the stored quiz
// score of a module.
func RecordCompetencyFeedback(inst *course.Instance, module int, feedback string) (course.Progress, Outcome, error) {
	if _, err := inst.Module(module); err != nil {
		return inst.Progress, Outcome{}, err
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "feedback", Reason: "must not be empty"}
	}
	score, ok := inst.Progress.QuizScores[module]
	if !ok {
		return inst.Progress, Outcome{}, &course.ValidationError{Field: "feedback", Reason: fmt.Sprintf("module %d has no quiz result", module)}
	}
	if score.CompetencyFeedback == feedback {
		return inst.Progress, Outcome{}, nil
	}

	p := inst.Progress.Clone()
	score.CompetencyFeedback = feedback
	p.QuizScores[module] = score
	return p, Outcome{Changed: true}, nil
}

// SubmitForReview moves an in-progress module into pending_review.
func SubmitForReview(inst *course.Instance, module int) (course.Progress, Outcome, error) {
	if _, err := inst.Module(module); err != nil {
		return inst.Progress, Outcome{}, err
	}
	switch status := inst.Progress.ModuleStatus[module]; status {
	case course.ModulePendingReview:
		return inst.Progress, Outcome{}, nil
	case course.ModuleInProgress:
	default:
		return inst.Progress, Outcome{}, &course.ModuleStateError{Op: "submit for review", Module: module, Status: status}
	}

	p := inst.Progress.Clone()
	var out Outcome
	out.move(&p, module, course.ModulePendingReview, TriggerReviewSubmit)
	return p, out, nil
}

// ResolveReview completes a pending module when approved, unlocking the
// next one, or returns it to in_progress when rejected.
func ResolveReview(inst *course.Instance, module int, approved bool) (course.Progress, Outcome, error) {
	if _, err := inst.Module(module); err != nil {
		return inst.Progress, Outcome{}, err
	}
	status := inst.Progress.ModuleStatus[module]
	if status == course.ModuleCompleted && approved {
		return inst.Progress, Outcome{}, nil
	}
	if status != course.ModulePendingReview {
		return inst.Progress, Outcome{}, &course.ModuleStateError{Op: "resolve review", Module: module, Status: status}
	}

	p := inst.Progress.Clone()
	var out Outcome
	if !approved {
		out.move(&p, module, course.ModuleInProgress, TriggerReviewRejected)
		return p, out, nil
	}
	out.move(&p, module, course.ModuleCompleted, TriggerReviewApproved)
	unlockNext(&p, &out, module)
	p.Status = CourseStatus(inst, p)
	return p, out, nil
}

// unlockNext opens the module after a completed one, if it is locked.
func unlockNext(p *course.Progress, out *Outcome, module int) {
	next := module + 1
	if next >= len(p.ModuleStatus) || p.ModuleStatus[next] != course.ModuleLocked {
		return
	}
	out.move(p, next, course.ModuleInProgress, TriggerPreviousDone)
}

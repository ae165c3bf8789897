package rewards

import "github.com/abhisek/skillpath/internal/course"

// EventKind identifies a reward event.
type EventKind string

const (
	EventLessonCompleted  EventKind = "lesson_completed"
	EventQuizPassed       EventKind = "quiz_passed"
	EventProjectSubmitted EventKind = "project_submitted"
	EventProjectEvaluated EventKind = "project_evaluated"
	EventExamPassed       EventKind = "exam_passed"
	EventEnrolled         EventKind = "enrolled"
	EventRemedialLesson   EventKind = "remedial_lesson"
	EventStreakUpdated    EventKind = "streak_updated"
)

// XP awarded per event.
const (
	XPLessonCompleted  = 50
	XPQuizPassed       = 100
	XPProjectSubmitted = 50
	XPProjectApproved  = 250
	XPSelfEnrolled     = 25
)

// StreakTarget is the streak length that unlocks streak_7.
const StreakTarget = 7

// Event is one occurrence fed to the ledger. Callers only emit events for
// first-time transitions; the ledger itself does not deduplicate XP.
type Event struct {
	Kind EventKind

	// Key is the idempotence key the caller checked, kept for the audit log.
	Key string

	Score int // quiz score
	Total int // quiz total

	OverallScore int // project evaluation

	SelfAssigned bool // enrollment

	Streak int // streak update
}

func LessonCompleted(key string) Event { return Event{Kind: EventLessonCompleted, Key: key} }

func QuizPassed(key string, score, total int) Event {
	return Event{Kind: EventQuizPassed, Key: key, Score: score, Total: total}
}

func ProjectSubmitted() Event {
	return Event{Kind: EventProjectSubmitted, Key: course.ProjectSubmittedKey}
}

func ProjectEvaluated(overallScore int) Event {
	return Event{Kind: EventProjectEvaluated, Key: course.ProjectApprovedKey, OverallScore: overallScore}
}

func ExamPassed() Event { return Event{Kind: EventExamPassed, Key: "final_exam"} }

func Enrolled(templateID string, selfAssigned bool) Event {
	return Event{Kind: EventEnrolled, Key: templateID, SelfAssigned: selfAssigned}
}

func RemedialLessonRequested(key string) Event {
	return Event{Kind: EventRemedialLesson, Key: key}
}

func StreakUpdated(streak int) Event { return Event{Kind: EventStreakUpdated, Streak: streak} }

// Unlock is an achievement granted by Apply.
type Unlock struct {
	Achievement Achievement
}

// XPThreshold is the total XP needed to hold level n: 500·n².
func XPThreshold(n int) int {
	return 500 * n * n
}

// LevelFor returns the highest level whose threshold xp reaches, never
// below 1.
func LevelFor(xp int) int {
	level := 1
	for xp >= XPThreshold(level+1) {
		level++
	}
	return level
}

// XPDelta returns the XP an event is worth.
func XPDelta(ev Event) int {
	switch ev.Kind {
	case EventLessonCompleted:
		return XPLessonCompleted
	case EventQuizPassed:
		return XPQuizPassed
	case EventProjectSubmitted:
		return XPProjectSubmitted
	case EventProjectEvaluated:
		if ev.OverallScore >= course.ProjectApprovalScore {
			return XPProjectApproved
		}
	case EventEnrolled:
		if ev.SelfAssigned {
			return XPSelfEnrolled
		}
	}
	return 0
}

// Apply returns the record that results from ev and the achievements it
// newly unlocks. rec is not modified. Every achievement is granted at most
// once; level never decreases.
func Apply(rec course.Gamification, ev Event) (course.Gamification, []Unlock) {
	next := rec.Clone()
	if next.Level < 1 {
		next.Level = 1
	}

	var unlocks []Unlock
	grant := func(a Achievement) {
		if next.Achievements.Add(string(a.ID)) {
			unlocks = append(unlocks, Unlock{Achievement: a})
		}
	}

	if ev.Kind == EventStreakUpdated {
		next.Streak = ev.Streak
	}
	next.XP += XPDelta(ev)

	switch ev.Kind {
	case EventEnrolled:
		grant(catalog[Pioneer])
	case EventQuizPassed:
		if ev.Total > 0 && ev.Score == ev.Total {
			grant(catalog[PerfectQuiz])
		}
	case EventProjectSubmitted:
		grant(catalog[Builder])
	case EventProjectEvaluated:
		if ev.OverallScore >= course.ProjectApprovalScore {
			grant(catalog[CompetencyVerified])
		}
	case EventRemedialLesson:
		grant(catalog[RemedialStudent])
	case EventExamPassed:
		grant(catalog[FinalExamPassed])
	}

	for next.XP >= XPThreshold(next.Level+1) {
		next.Level++
		grant(levelAchievement(next.Level))
	}

	if next.Streak >= StreakTarget {
		grant(catalog[Streak7])
	}

	return next, unlocks
}

// ApplyAll folds events through Apply in order.
func ApplyAll(rec course.Gamification, events []Event) (course.Gamification, []Unlock) {
	var all []Unlock
	for _, ev := range events {
		var unlocks []Unlock
		rec, unlocks = Apply(rec, ev)
		all = append(all, unlocks...)
	}
	return rec, all
}

package rewards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies an achievement. Fixed achievements are listed below;
// level achievements are "level_N" for N >= 2.
type ID string

const (
	Pioneer            ID = "pioneer"
	Streak7            ID = "streak_7"
	PerfectQuiz        ID = "perfect_quiz"
	Builder            ID = "builder"
	CompetencyVerified ID = "competency_verified"
	RemedialStudent    ID = "remedial_student"
	FinalExamPassed    ID = "final_exam_passed"
)

const levelPrefix = "level_"

// UserNamePlaceholder is substituted by the presentation layer.
const UserNamePlaceholder = "{userName}"

// ErrUnknownAchievement is returned for IDs outside the catalog.
var ErrUnknownAchievement = errors.New("unknown achievement")

// UnknownAchievementError names the rejected ID.
type UnknownAchievementError struct {
	ID string
}

func (e *UnknownAchievementError) Error() string {
	return fmt.Sprintf("unknown achievement id %q", e.ID)
}

func (e *UnknownAchievementError) Unwrap() error { return ErrUnknownAchievement }

// Achievement is catalog metadata for one unlockable badge.
type Achievement struct {
	ID          ID
	Title       string
	Description string
	Icon        string

	// MessageID keys the localized celebration message.
	MessageID string
	// Message is the default celebration text containing {userName}.
	Message string
}

// Render fills the celebration message for a learner.
func (a Achievement) Render(userName string) string {
	return strings.ReplaceAll(a.Message, UserNamePlaceholder, userName)
}

var catalog = map[ID]Achievement{
	Pioneer: {
		ID: Pioneer, Title: "Pioneer", Icon: "🧭",
		Description: "Started a first course",
		MessageID:   "achievement.pioneer",
		Message:     "Welcome aboard, {userName}! Your first skill path has begun.",
	},
	Streak7: {
		ID: Streak7, Title: "On Fire", Icon: "🔥",
		Description: "Kept a 7 day learning streak",
		MessageID:   "achievement.streak_7",
		Message:     "Seven days in a row, {userName}! Keep the streak alive.",
	},
	PerfectQuiz: {
		ID: PerfectQuiz, Title: "Flawless", Icon: "🎯",
		Description: "Answered every quiz question correctly",
		MessageID:   "achievement.perfect_quiz",
		Message:     "A perfect score, {userName}! Not a single miss.",
	},
	Builder: {
		ID: Builder, Title: "Builder", Icon: "🛠",
		Description: "Submitted a first final project",
		MessageID:   "achievement.builder",
		Message:     "Project shipped, {userName}! Your work is in for review.",
	},
	CompetencyVerified: {
		ID: CompetencyVerified, Title: "Competency Verified", Icon: "✅",
		Description: "Had a final project approved",
		MessageID:   "achievement.competency_verified",
		Message:     "Approved! {userName}, your project met the bar.",
	},
	RemedialStudent: {
		ID: RemedialStudent, Title: "Never Give Up", Icon: "📚",
		Description: "Asked for a first remedial lesson",
		MessageID:   "achievement.remedial_student",
		Message:     "Good call, {userName}. Going back over the basics pays off.",
	},
	FinalExamPassed: {
		ID: FinalExamPassed, Title: "Graduate", Icon: "🎓",
		Description: "Passed a final exam",
		MessageID:   "achievement.final_exam_passed",
		Message:     "You passed the final exam, {userName}! Congratulations.",
	},
}

// All returns the fixed achievements in display order.
func All() []Achievement {
	ids := []ID{Pioneer, PerfectQuiz, Builder, CompetencyVerified, RemedialStudent, FinalExamPassed, Streak7}
	out := make([]Achievement, len(ids))
	for i, id := range ids {
		out[i] = catalog[id]
	}
	return out
}

// LevelID returns the achievement ID for reaching level n.
func LevelID(n int) ID {
	return ID(levelPrefix + strconv.Itoa(n))
}

func levelAchievement(n int) Achievement {
	return Achievement{
		ID:          LevelID(n),
		Title:       fmt.Sprintf("Level %d", n),
		Description: fmt.Sprintf("Reached level %d", n),
		Icon:        "⭐",
		MessageID:   "achievement.level_up",
		Message:     fmt.Sprintf("Level up! {userName} reached level %d.", n),
	}
}

// Lookup returns catalog metadata for id. Level IDs are parsed and
// accepted for N >= 2; anything else outside the catalog is an error.
func Lookup(id string) (Achievement, error) {
	if a, ok := catalog[ID(id)]; ok {
		return a, nil
	}
	if rest, ok := strings.CutPrefix(id, levelPrefix); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 2 && strconv.Itoa(n) == rest {
			return levelAchievement(n), nil
		}
	}
	return Achievement{}, &UnknownAchievementError{ID: id}
}

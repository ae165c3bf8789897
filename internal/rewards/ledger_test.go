package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
)

func unlockedIDs(unlocks []Unlock) []ID {
	ids := make([]ID, len(unlocks))
	for i, u := range unlocks {
		ids[i] = u.Achievement.ID
	}
	return ids
}

func TestXPThreshold(t *testing.T) {
	assert.Equal(t, 500, XPThreshold(1))
	assert.Equal(t, 2000, XPThreshold(2))
	assert.Equal(t, 4500, XPThreshold(3))
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{250, 1},
		{1999, 1},
		{2000, 2},
		{4499, 2},
		{4500, 3},
		{50000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.xp), "xp=%d", tt.xp)
	}
}

func TestApply_XPTable(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want int
	}{
		{"lesson", LessonCompleted("m0_l0"), 50},
		{"quiz passed", QuizPassed("m0", 4, 5), 100},
		{"project submitted", ProjectSubmitted(), 50},
		{"project approved", ProjectEvaluated(70), 250},
		{"project rejected", ProjectEvaluated(69), 0},
		{"self enrolled", Enrolled("tmpl", true), 25},
		{"assigned", Enrolled("tmpl", false), 0},
		{"exam passed", ExamPassed(), 0},
		{"remedial", RemedialLessonRequested("m0"), 0},
		{"streak", StreakUpdated(3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Apply(course.NewGamification(), tt.ev)
			assert.Equal(t, tt.want, got.XP)
		})
	}
}

func TestApply_ProjectApprovalKeepsLevel(t *testing.T) {
	rec := course.NewGamification()

	got, unlocks := Apply(rec, ProjectEvaluated(85))

	assert.Equal(t, 250, got.XP)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, []ID{CompetencyVerified}, unlockedIDs(unlocks))
}

func TestApply_LevelUpEmitsEachLevel(t *testing.T) {
	rec := course.NewGamification()
	rec.XP = 1950

	got, unlocks := Apply(rec, LessonCompleted("m0_l0"))
	assert.Equal(t, 2000, got.XP)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, []ID{LevelID(2)}, unlockedIDs(unlocks))

	got.XP = 4400
	got, unlocks = Apply(got, QuizPassed("m1", 3, 4))
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, []ID{LevelID(3)}, unlockedIDs(unlocks))

	// A jump over several thresholds emits one unlock per level.
	jump := course.NewGamification()
	jump.XP = 7900
	jump, unlocks = Apply(jump, QuizPassed("m2", 1, 2))
	assert.Equal(t, 4, jump.Level)
	assert.Equal(t, []ID{LevelID(2), LevelID(3), LevelID(4)}, unlockedIDs(unlocks))
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	rec := course.NewGamification()
	_, _ = Apply(rec, Enrolled("tmpl", true))

	assert.Equal(t, 0, rec.XP)
	assert.Equal(t, 0, rec.Achievements.Len())
}

func TestApply_AchievementsAreIdempotent(t *testing.T) {
	rec := course.NewGamification()

	rec, unlocks := Apply(rec, QuizPassed("m0", 5, 5))
	assert.Equal(t, []ID{PerfectQuiz}, unlockedIDs(unlocks))

	rec, unlocks = Apply(rec, QuizPassed("m1", 5, 5))
	assert.Empty(t, unlocks)
	assert.Equal(t, 200, rec.XP)
	assert.True(t, rec.Achievements.Has(string(PerfectQuiz)))
}

func TestApply_Triggers(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want []ID
	}{
		{"pioneer on enrollment", Enrolled("tmpl", false), []ID{Pioneer}},
		{"perfect quiz", QuizPassed("m0", 3, 3), []ID{PerfectQuiz}},
		{"imperfect quiz", QuizPassed("m0", 4, 5), nil},
		{"builder", ProjectSubmitted(), []ID{Builder}},
		{"competency verified", ProjectEvaluated(90), []ID{CompetencyVerified}},
		{"low evaluation", ProjectEvaluated(40), nil},
		{"remedial student", RemedialLessonRequested("m0"), []ID{RemedialStudent}},
		{"final exam", ExamPassed(), []ID{FinalExamPassed}},
		{"streak below target", StreakUpdated(6), nil},
		{"streak at target", StreakUpdated(7), []ID{Streak7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, unlocks := Apply(course.NewGamification(), tt.ev)
			if tt.want == nil {
				assert.Empty(t, unlocks)
				return
			}
			assert.Equal(t, tt.want, unlockedIDs(unlocks))
		})
	}
}

func TestApply_StreakIsExternalInput(t *testing.T) {
	rec := course.NewGamification()
	rec, _ = Apply(rec, StreakUpdated(9))
	assert.Equal(t, 9, rec.Streak)

	// Any later event re-checks the streak without granting twice.
	rec, unlocks := Apply(rec, LessonCompleted("m0_l1"))
	assert.Empty(t, unlocks)

	rec, _ = Apply(rec, StreakUpdated(0))
	assert.Equal(t, 0, rec.Streak)
	assert.True(t, rec.Achievements.Has(string(Streak7)), "achievements never shrink")
}

func TestApply_Monotonicity(t *testing.T) {
	events := []Event{
		Enrolled("tmpl", true),
		LessonCompleted("m0_l0"),
		QuizPassed("m0", 5, 5),
		ProjectSubmitted(),
		ProjectEvaluated(95),
		ExamPassed(),
		StreakUpdated(8),
		StreakUpdated(1),
	}
	for range 20 {
		events = append(events, QuizPassed("mx", 7, 10))
	}

	rec := course.NewGamification()
	prevLevel := rec.Level
	prevAch := rec.Achievements.Clone()
	for _, ev := range events {
		rec, _ = Apply(rec, ev)

		require.GreaterOrEqual(t, rec.Level, prevLevel)
		require.LessOrEqual(t, XPThreshold(rec.Level), max(rec.XP, XPThreshold(1)))
		require.Less(t, rec.XP, XPThreshold(rec.Level+1))
		for id := range prevAch {
			require.True(t, rec.Achievements.Has(id), "lost %s", id)
		}
		prevLevel = rec.Level
		prevAch = rec.Achievements.Clone()
	}
}

func TestApplyAll(t *testing.T) {
	rec, unlocks := ApplyAll(course.NewGamification(), []Event{
		Enrolled("tmpl", true),
		LessonCompleted("m0_l0"),
		ProjectSubmitted(),
	})
	assert.Equal(t, 125, rec.XP)
	assert.Equal(t, []ID{Pioneer, Builder}, unlockedIDs(unlocks))
}

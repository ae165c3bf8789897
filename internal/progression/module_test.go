package progression

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
)

func newInstance(t *testing.T, withProject bool) *course.Instance {
	t.Helper()
	tmpl := &course.Template{
		ID:    "k8s",
		Title: "Kubernetes",
		Modules: []course.Module{
			{Title: "Pods", Lessons: []course.Lesson{{Title: "What is a pod"}, {Title: "Pod lifecycle"}}},
			{Title: "Services", Lessons: []course.Lesson{{Title: "ClusterIP"}}},
			{Title: "Ingress", Lessons: []course.Lesson{{Title: "Routing"}}},
		},
	}
	if withProject {
		tmpl.FinalProject = &course.FinalProject{Title: "Deploy an app"}
	}
	learner, err := course.NewLearner("Ada", "")
	require.NoError(t, err)
	inst, err := course.CreateInstance(tmpl, learner)
	require.NoError(t, err)
	return inst
}

// apply runs an operation and returns the instance carrying its progress.
func apply(t *testing.T, inst *course.Instance, p course.Progress, out Outcome, err error) (*course.Instance, Outcome) {
	t.Helper()
	require.NoError(t, err)
	return inst.WithProgress(p), out
}

func completeAllModules(t *testing.T, inst *course.Instance) *course.Instance {
	t.Helper()
	for i := range inst.Modules {
		p, out, err := RecordQuizResult(inst, i, 5, 5)
		inst, _ = apply(t, inst, p, out, err)
	}
	return inst
}

// orderingHolds checks that a module is open only after its predecessor
// completed and that at most one module is open.
func orderingHolds(p course.Progress) bool {
	open := 0
	for i, s := range p.ModuleStatus {
		if s == course.ModuleLocked {
			continue
		}
		if i > 0 && p.ModuleStatus[i-1] != course.ModuleCompleted {
			return false
		}
		if s != course.ModuleCompleted {
			open++
		}
	}
	return open <= 1
}

func TestCompleteLesson_Idempotent(t *testing.T) {
	inst := newInstance(t, false)

	p, out, err := CompleteLesson(inst, 0, 1)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	require.Len(t, out.Events, 1)
	assert.Equal(t, rewards.EventLessonCompleted, out.Events[0].Kind)
	assert.True(t, p.CompletedItems.Has("m0_l1"))
	assert.False(t, inst.Progress.CompletedItems.Has("m0_l1"), "input progress must not change")

	inst = inst.WithProgress(p)
	p2, out, err := CompleteLesson(inst, 0, 1)
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Empty(t, out.Events)
	assert.Equal(t, p.CompletedItems, p2.CompletedItems)
}

func TestCompleteLesson_Errors(t *testing.T) {
	inst := newInstance(t, false)

	_, _, err := CompleteLesson(inst, 1, 0)
	assert.True(t, errors.Is(err, course.ErrInvalidModuleState), "locked module: %v", err)

	_, _, err = CompleteLesson(inst, 0, 9)
	assert.True(t, errors.Is(err, course.ErrInvalidInput))

	_, _, err = CompleteLesson(inst, 7, 0)
	assert.True(t, errors.Is(err, course.ErrInvalidInput))

	inst = completeAllModules(t, inst)
	_, _, err = CompleteLesson(inst, 0, 0)
	var mse *course.ModuleStateError
	require.True(t, errors.As(err, &mse))
	assert.Equal(t, course.ModuleCompleted, mse.Status)
}

func TestRecordQuizResult_FailingScoreKeepsModuleOpen(t *testing.T) {
	inst := newInstance(t, false)

	p, out, err := RecordQuizResult(inst, 0, 3, 5)
	require.NoError(t, err)

	assert.Equal(t, course.ModuleInProgress, p.ModuleStatus[0])
	assert.Equal(t, course.ModuleLocked, p.ModuleStatus[1])
	assert.Equal(t, course.QuizScore{Score: 3, Total: 5}, p.QuizScores[0])
	assert.Empty(t, out.Events)
	assert.True(t, out.NeedsFeedback)
	assert.Empty(t, out.Transitions)
}

func TestRecordQuizResult_PassingScoreUnlocksNext(t *testing.T) {
	inst := newInstance(t, false)

	p, out, err := RecordQuizResult(inst, 0, 4, 5)
	require.NoError(t, err)

	assert.Equal(t, course.ModuleCompleted, p.ModuleStatus[0])
	assert.Equal(t, course.ModuleInProgress, p.ModuleStatus[1])
	assert.Equal(t, course.ModuleLocked, p.ModuleStatus[2])
	assert.False(t, out.NeedsFeedback)
	require.Len(t, out.Events, 1)
	assert.Equal(t, rewards.EventQuizPassed, out.Events[0].Kind)
	assert.Equal(t, 4, out.Events[0].Score)
	assert.Equal(t, []Transition{
		{Module: 0, From: course.ModuleInProgress, To: course.ModuleCompleted, Trigger: TriggerQuizPassed},
		{Module: 1, From: course.ModuleLocked, To: course.ModuleInProgress, Trigger: TriggerPreviousDone},
	}, out.Transitions)
}

func TestRecordQuizResult_RetakeOverwritesScore(t *testing.T) {
	inst := newInstance(t, false)

	p, out, err := RecordQuizResult(inst, 0, 1, 5)
	inst, _ = apply(t, inst, p, out, err)
	p, _, err = RecordQuizResult(inst, 0, 5, 5)
	require.NoError(t, err)

	assert.Equal(t, course.QuizScore{Score: 5, Total: 5}, p.QuizScores[0])
}

func TestRecordQuizResult_RejectsLockedAndCompleted(t *testing.T) {
	inst := newInstance(t, false)

	_, _, err := RecordQuizResult(inst, 2, 5, 5)
	assert.True(t, errors.Is(err, course.ErrInvalidModuleState))

	p, out, err := RecordQuizResult(inst, 0, 5, 5)
	inst, _ = apply(t, inst, p, out, err)

	_, _, err = RecordQuizResult(inst, 0, 5, 5)
	assert.True(t, errors.Is(err, course.ErrInvalidModuleState))
}

func TestRecordQuizResult_InvalidTuples(t *testing.T) {
	inst := newInstance(t, false)
	for _, tc := range [][2]int{{1, 0}, {-1, 5}, {6, 5}} {
		_, _, err := RecordQuizResult(inst, 0, tc[0], tc[1])
		assert.True(t, errors.Is(err, course.ErrInvalidInput), "score=%d total=%d", tc[0], tc[1])
	}
}

func TestModuleOrdering(t *testing.T) {
	inst := newInstance(t, false)
	require.True(t, orderingHolds(inst.Progress))

	steps := []struct{ module, score int }{{0, 2}, {0, 5}, {1, 3}, {1, 4}, {2, 5}}
	for _, s := range steps {
		p, out, err := RecordQuizResult(inst, s.module, s.score, 5)
		inst, _ = apply(t, inst, p, out, err)
		assert.True(t, orderingHolds(inst.Progress), "after module %d score %d: %v", s.module, s.score, inst.Progress.ModuleStatus)
	}
	assert.True(t, inst.Progress.AllModulesCompleted())
}

func TestReviewDetour(t *testing.T) {
	inst := newInstance(t, false)

	p, out, err := SubmitForReview(inst, 0)
	inst, out = apply(t, inst, p, out, err)
	assert.Equal(t, course.ModulePendingReview, inst.Progress.ModuleStatus[0])
	assert.True(t, out.Changed)

	_, _, err = RecordQuizResult(inst, 0, 5, 5)
	assert.True(t, errors.Is(err, course.ErrInvalidModuleState), "quiz on pending module")

	p, out, err = ResolveReview(inst, 0, false)
	inst, _ = apply(t, inst, p, out, err)
	assert.Equal(t, course.ModuleInProgress, inst.Progress.ModuleStatus[0])

	p, out, err = SubmitForReview(inst, 0)
	inst, _ = apply(t, inst, p, out, err)
	p, out, err = ResolveReview(inst, 0, true)
	inst, _ = apply(t, inst, p, out, err)
	assert.Equal(t, course.ModuleCompleted, inst.Progress.ModuleStatus[0])
	assert.Equal(t, course.ModuleInProgress, inst.Progress.ModuleStatus[1])
	assert.True(t, orderingHolds(inst.Progress))

	_, out, err = ResolveReview(inst, 0, true)
	require.NoError(t, err)
	assert.False(t, out.Changed)

	_, _, err = SubmitForReview(inst, 2)
	assert.True(t, errors.Is(err, course.ErrInvalidModuleState))
}

func TestRecordCompetencyFeedback(t *testing.T) {
	inst := newInstance(t, false)

	_, _, err := RecordCompetencyFeedback(inst, 0, "revise pods")
	assert.True(t, errors.Is(err, course.ErrInvalidInput), "no quiz yet")

	p, out, err := RecordQuizResult(inst, 0, 2, 5)
	inst, _ = apply(t, inst, p, out, err)

	p, out, err = RecordCompetencyFeedback(inst, 0, "revise pods")
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, "revise pods", p.QuizScores[0].CompetencyFeedback)

	inst = inst.WithProgress(p)
	_, out, err = RecordCompetencyFeedback(inst, 0, "revise pods")
	require.NoError(t, err)
	assert.False(t, out.Changed)
}

func TestAddRemedialLesson(t *testing.T) {
	inst := newInstance(t, false)
	lesson := course.RemedialLesson{Module: 0, Title: "Pods again", Explanation: "A pod wraps containers."}

	p, out, err := AddRemedialLesson(inst, lesson)
	inst, out = apply(t, inst, p, out, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, rewards.EventRemedialLesson, out.Events[0].Kind)

	p, out, err = AddRemedialLesson(inst, lesson)
	inst, out = apply(t, inst, p, out, err)
	assert.Empty(t, out.Events)
	assert.Len(t, inst.Progress.RemedialLessons, 2)

	_, _, err = AddRemedialLesson(inst, course.RemedialLesson{Module: 0})
	assert.True(t, errors.Is(err, course.ErrInvalidInput))
}

func TestAppendTutorMessage(t *testing.T) {
	inst := newInstance(t, false)

	p, _, err := AppendTutorMessage(inst, course.TutorMessage{Role: "user", Content: "What is a sidecar?"})
	require.NoError(t, err)
	require.Len(t, p.TutorHistory, 1)
	assert.False(t, p.TutorHistory[0].At.IsZero())
	assert.Empty(t, inst.Progress.TutorHistory)

	_, _, err = AppendTutorMessage(inst, course.TutorMessage{Role: "system", Content: "x"})
	assert.True(t, errors.Is(err, course.ErrInvalidInput))
}

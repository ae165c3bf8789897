package exam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/progression"
	"github.com/abhisek/skillpath/internal/rewards"
)

func eligibleInstance(t *testing.T) *course.Instance {
	t.Helper()
	tmpl := &course.Template{
		ID:    "go-basics",
		Title: "Go Basics",
		Modules: []course.Module{
			{Title: "Types", Lessons: []course.Lesson{{Title: "Structs"}}},
			{Title: "Concurrency", Lessons: []course.Lesson{{Title: "Channels"}}},
		},
	}
	learner, err := course.NewLearner("Grace", "")
	require.NoError(t, err)
	inst, err := course.CreateInstance(tmpl, learner)
	require.NoError(t, err)
	for i := range inst.Modules {
		p, _, err := progression.RecordQuizResult(inst, i, 5, 5)
		require.NoError(t, err)
		inst = inst.WithProgress(p)
	}
	return inst
}

func step(t *testing.T, inst *course.Instance, p course.Progress, out progression.Outcome, err error) (*course.Instance, progression.Outcome) {
	t.Helper()
	require.NoError(t, err)
	return inst.WithProgress(p), out
}

func TestRecordTurn(t *testing.T) {
	inst := eligibleInstance(t)

	p, out, err := RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleExaminer, Content: "Explain goroutines."})
	inst, out = step(t, inst, p, out, err)
	assert.True(t, out.Changed)
	assert.Equal(t, course.ExamInProgress, inst.Progress.FinalExam.Status)
	assert.Len(t, inst.Progress.FinalExam.History, 1)

	_, _, err = RecordTurn(inst, course.ExamTurn{Role: "proctor", Content: "x"})
	assert.True(t, errors.Is(err, course.ErrInvalidInput))
}

func TestRecordTurn_NotEligible(t *testing.T) {
	tmpl := &course.Template{ID: "t", Title: "T", Modules: []course.Module{{Title: "M", Lessons: []course.Lesson{{Title: "L"}}}}}
	learner, err := course.NewLearner("Grace", "")
	require.NoError(t, err)
	inst, err := course.CreateInstance(tmpl, learner)
	require.NoError(t, err)

	_, _, err = RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleLearner, Content: "hi"})
	assert.True(t, errors.Is(err, course.ErrExamNotEligible))

	_, _, err = ApplyVerdict(inst, course.Verdict{Passed: true})
	assert.True(t, errors.Is(err, course.ErrExamNotEligible))
}

func TestApplyVerdict_Pass(t *testing.T) {
	inst := eligibleInstance(t)

	p, out, err := ApplyVerdict(inst, course.Verdict{Passed: true, Feedback: "solid"})
	inst, out = step(t, inst, p, out, err)

	assert.Equal(t, course.ExamPassed, inst.Progress.FinalExam.Status)
	assert.Equal(t, course.StatusCompleted, inst.Progress.Status)
	require.Len(t, out.Events, 1)
	assert.Equal(t, rewards.EventExamPassed, out.Events[0].Kind)

	_, out, err = ApplyVerdict(inst, course.Verdict{Passed: false})
	require.NoError(t, err)
	assert.False(t, out.Changed, "verdict after pass is ignored")

	_, _, err = RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleLearner, Content: "again"})
	var ese *course.ExamStateError
	assert.True(t, errors.As(err, &ese))
}

func TestApplyVerdict_FailKeepsAttempts(t *testing.T) {
	inst := eligibleInstance(t)
	p, out, err := RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleExaminer, Content: "Q1"})
	inst, _ = step(t, inst, p, out, err)

	p, out, err = ApplyVerdict(inst, course.Verdict{Passed: false, Feedback: "review channels"})
	inst, out = step(t, inst, p, out, err)

	state := inst.Progress.FinalExam
	assert.Equal(t, course.ExamNotStarted, state.Status)
	assert.Equal(t, 2, state.AttemptsLeft)
	assert.Empty(t, state.History)
	require.NotNil(t, state.LastFeedback)
	assert.Equal(t, "review channels", *state.LastFeedback)
	assert.False(t, out.NeedsRemediationPlan)
	assert.Equal(t, 2, state.AttemptNumber())
}

func TestAttemptCycle_ExhaustRemediateReset(t *testing.T) {
	inst := eligibleInstance(t)

	for i := 0; i < course.MaxExamAttempts; i++ {
		p, out, err := RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleLearner, Content: "answer"})
		inst, _ = step(t, inst, p, out, err)
		p, out, err = ApplyVerdict(inst, course.Verdict{Passed: false, Feedback: "not yet"})
		inst, out = step(t, inst, p, out, err)
		assert.Equal(t, i == course.MaxExamAttempts-1, out.NeedsRemediationPlan)
	}

	state := inst.Progress.FinalExam
	assert.Equal(t, course.ExamFailedRemediationNeeded, state.Status)
	assert.Equal(t, 0, state.AttemptsLeft)
	assert.Len(t, state.History, 1, "last attempt history is kept for the plan")

	_, _, err := ApplyVerdict(inst, course.Verdict{Passed: true})
	assert.True(t, errors.Is(err, course.ErrAttemptsExhausted))

	_, _, err = RecordTurn(inst, course.ExamTurn{Role: course.ExamRoleLearner, Content: "x"})
	assert.True(t, errors.Is(err, course.ErrAttemptsExhausted))

	_, _, err = Reset(inst)
	assert.True(t, errors.Is(err, course.ErrRemediationNotReady), "reset without plan")

	_, _, err = SetRemediationPlan(inst, "   ")
	assert.True(t, errors.Is(err, course.ErrInvalidInput))

	p, out, err := SetRemediationPlan(inst, "Re-read the concurrency module.")
	inst, _ = step(t, inst, p, out, err)
	require.NotNil(t, inst.Progress.FinalExam.RemediationPlan)

	_, out, err = SetRemediationPlan(inst, "another plan")
	require.NoError(t, err)
	assert.False(t, out.Changed)

	p, out, err = Reset(inst)
	inst, _ = step(t, inst, p, out, err)
	assert.Equal(t, course.NewExamState(), inst.Progress.FinalExam)
	assert.Equal(t, 1, inst.Progress.FinalExam.AttemptNumber())
}

func TestSetRemediationPlan_WrongState(t *testing.T) {
	inst := eligibleInstance(t)

	_, _, err := SetRemediationPlan(inst, "plan")
	var ese *course.ExamStateError
	require.True(t, errors.As(err, &ese))
	assert.Equal(t, course.ExamNotStarted, ese.Status)

	_, _, err = Reset(inst)
	assert.True(t, errors.Is(err, course.ErrRemediationNotReady))
}

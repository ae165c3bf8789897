package cmd

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers(t *testing.T) {
	got, err := parseAnswers("1, 0,2")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 2}, got)

	_, err = parseAnswers("1,x")
	assert.Error(t, err)
}

func TestParseIndex(t *testing.T) {
	n, err := parseIndex("module", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = parseIndex("module", "-1")
	assert.Error(t, err)
}

func TestParseCompetency(t *testing.T) {
	c, err := parseCompetency("Design=80:clean boundaries")
	require.NoError(t, err)
	assert.Equal(t, "Design", c.Name)
	assert.Equal(t, 80, c.Score)
	assert.Equal(t, "clean boundaries", c.Feedback)

	c, err = parseCompetency("Testing=55")
	require.NoError(t, err)
	assert.Empty(t, c.Feedback)

	_, err = parseCompetency("Testing")
	assert.Error(t, err)
	_, err = parseCompetency("Testing=high")
	assert.Error(t, err)
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestCLI_EnrollAndLesson(t *testing.T) {
	for _, k := range []string{"SKILLPATH_CONFIG", "SKILLPATH_STORE", "SKILLPATH_LLM_PROVIDER",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	db := filepath.Join(t.TempDir(), "cli.db")

	out := run(t, "learner", "add", "Ada", "--db", db)
	m := regexp.MustCompile(`Learner ID: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	learnerID := m[1]

	out = run(t, "enroll", learnerID, "onboarding", "--db", db)
	m = regexp.MustCompile(`Course ID: (\S+)`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	courseID := m[1]
	assert.Contains(t, out, "+25 XP")
	assert.Contains(t, out, "Pioneer")

	out = run(t, "lesson", "complete", courseID, "0", "0", "--db", db)
	assert.Contains(t, out, "+50 XP")

	out = run(t, "lesson", "complete", courseID, "0", "0", "--db", db)
	assert.Contains(t, out, "Nothing changed.")

	out = run(t, "rewards", learnerID, "--db", db)
	assert.Contains(t, out, "75 XP in listed events")

	out = run(t, "learner", "streak", learnerID, "--db", db)
	assert.Contains(t, out, "Streak: 1 days (next milestone 3)")

	out = run(t, "tutor", "history", courseID, "--db", db)
	assert.Contains(t, out, "No messages yet.")

	out = run(t, "show", learnerID, "--db", db)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "lessons 1/")
}

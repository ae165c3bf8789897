package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
)

func TestRenderHeader(t *testing.T) {
	l, err := course.NewLearner("Ada", "SRE")
	require.NoError(t, err)
	l.Gamification.XP = 250
	l.Gamification.Streak = 4

	out := RenderHeader(l, DefaultWidth)
	for _, want := range []string{"Ada", "SRE", "250 XP", "Lv 1", "4 day"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderFrame_SkipsEmpty(t *testing.T) {
	assert.Equal(t, "body", RenderFrame("", "body", RenderFooter(nil, DefaultWidth)))
}

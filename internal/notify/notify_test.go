package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/logging"
	"github.com/abhisek/skillpath/internal/rewards"
)

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Notification) error { return f.err }

func TestFromUnlocksRendersName(t *testing.T) {
	l, err := course.NewLearner("Linus", "")
	require.NoError(t, err)
	a, err := rewards.Lookup(string(rewards.Pioneer))
	require.NoError(t, err)

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ns := FromUnlocks(l, []rewards.Unlock{{Achievement: a}}, at)

	require.Len(t, ns, 1)
	n := ns[0]
	assert.Equal(t, "pioneer", n.AchievementID)
	assert.Equal(t, at, n.UnlockedAt)
	assert.Contains(t, n.Message, rewards.UserNamePlaceholder)
	assert.Contains(t, n.Render(), "Linus")
	assert.NotContains(t, n.Render(), rewards.UserNamePlaceholder)
}

func TestMultiJoinsErrors(t *testing.T) {
	rec := &Recorder{}
	boom := errors.New("boom")
	m := Multi{failingPublisher{err: boom}, rec, NewLogPublisher(logging.Nop())}

	err := m.Publish(context.Background(), Notification{AchievementID: "builder"})
	assert.ErrorIs(t, err, boom)
	require.Len(t, rec.All(), 1, "later publishers still run")
	assert.Equal(t, "builder", rec.All()[0].AchievementID)
}

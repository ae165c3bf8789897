// Package notify delivers achievement unlock notifications. Delivery is
// best effort: the engine logs publish errors and never fails an
// operation because of them.
package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/logging"
	"github.com/abhisek/skillpath/internal/rewards"
)

// Notification announces one unlocked achievement. Message keeps the
// {userName} placeholder; Render substitutes it.
type Notification struct {
	AchievementID string    `json:"achievement_id"`
	Title         string    `json:"title"`
	Icon          string    `json:"icon,omitempty"`
	LearnerID     string    `json:"learner_id"`
	LearnerName   string    `json:"learner_name"`
	MessageID     string    `json:"message_id"`
	Message       string    `json:"message"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// FromUnlocks builds one notification per unlock, in grant order.
func FromUnlocks(l *course.Learner, unlocks []rewards.Unlock, at time.Time) []Notification {
	out := make([]Notification, 0, len(unlocks))
	for _, u := range unlocks {
		a := u.Achievement
		out = append(out, Notification{
			AchievementID: string(a.ID),
			Title:         a.Title,
			Icon:          a.Icon,
			LearnerID:     l.ID,
			LearnerName:   l.Name,
			MessageID:     a.MessageID,
			Message:       a.Message,
			UnlockedAt:    at,
		})
	}
	return out
}

// Render returns the celebration text addressed to the learner.
func (n Notification) Render() string {
	return strings.ReplaceAll(n.Message, rewards.UserNamePlaceholder, n.LearnerName)
}

// Publisher delivers notifications.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// LogPublisher writes notifications to the structured log.
type LogPublisher struct {
	log *logging.Logger
}

func NewLogPublisher(log *logging.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("notify")}
}

func (p *LogPublisher) Publish(_ context.Context, n Notification) error {
	p.log.Info("achievement unlocked",
		"learner_id", n.LearnerID,
		"achievement", n.AchievementID,
		"message", n.Render(),
	)
	return nil
}

// Multi fans a notification out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, n Notification) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published notifications in memory.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
}

func (r *Recorder) Publish(_ context.Context, n Notification) error {
	r.mu.Lock()
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()
	return nil
}

// All returns a copy of everything published so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

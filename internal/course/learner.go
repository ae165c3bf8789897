package course

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Learner is an enrolled employee with their gamification standing.
type Learner struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Role         string       `json:"role,omitempty"`
	Gamification Gamification `json:"gamification"`

	// Enrollments maps template ID to the learner's instance of it.
	Enrollments map[string]string `json:"enrollments"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Gamification is the per-learner reward record. Level is derived from XP
// and Achievements only ever grows.
type Gamification struct {
	XP           int `json:"xp"`
	Level        int `json:"level"`
	Achievements Set `json:"achievements"`
	Streak       int `json:"streak"`
}

// NewGamification returns the record of a learner with no activity.
func NewGamification() Gamification {
	return Gamification{Level: 1, Achievements: NewSet()}
}

// Clone returns a copy that shares no mutable state with g.
func (g Gamification) Clone() Gamification {
	g.Achievements = g.Achievements.Clone()
	return g
}

// NewLearner creates a learner with a fresh ID and an empty record.
func NewLearner(name, role string) (*Learner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	return &Learner{
		ID:           uuid.NewString(),
		Name:         name,
		Role:         strings.TrimSpace(role),
		Gamification: NewGamification(),
		Enrollments:  map[string]string{},
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// InstanceFor returns the learner's instance ID for a template, if any.
func (l *Learner) InstanceFor(templateID string) (string, bool) {
	id, ok := l.Enrollments[templateID]
	return id, ok
}

// Clone returns a deep copy of the learner.
func (l *Learner) Clone() *Learner {
	out := *l
	out.Gamification = l.Gamification.Clone()
	out.Enrollments = make(map[string]string, len(l.Enrollments))
	for k, v := range l.Enrollments {
		out.Enrollments[k] = v
	}
	return &out
}

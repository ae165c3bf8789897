package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/rewards"
	"github.com/abhisek/skillpath/internal/store"
	"github.com/abhisek/skillpath/internal/streak"
)

// RegisterLearner creates a learner with an empty gamification record.
func (e *Engine) RegisterLearner(ctx context.Context, name, role string) (*course.Learner, error) {
	l, err := course.NewLearner(name, role)
	if err != nil {
		return nil, err
	}
	if err := e.repo.SaveLearner(ctx, l); err != nil {
		return nil, fmt.Errorf("register learner: %w", err)
	}
	e.log.Info("learner registered", "learner_id", l.ID, "role", l.Role)
	return l, nil
}

// SelfEnroll creates the learner's instance of a template on their own
// initiative, which earns enrollment XP.
func (e *Engine) SelfEnroll(ctx context.Context, learnerID, templateID string) (*Result, error) {
	return e.enroll(ctx, learnerID, templateID, true)
}

// AssignCourse enrolls a learner on an admin's behalf. No XP is awarded,
// but a first enrollment still unlocks pioneer.
func (e *Engine) AssignCourse(ctx context.Context, learnerID, templateID string) (*Result, error) {
	return e.enroll(ctx, learnerID, templateID, false)
}

func (e *Engine) enroll(ctx context.Context, learnerID, templateID string, self bool) (*Result, error) {
	tmpl, err := e.templates.Get(templateID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(learnerID)
	defer unlock()

	learner, err := e.repo.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	inst, err := course.CreateInstance(tmpl, learner)
	if err != nil {
		return nil, err
	}
	inst.SelfAssigned = self
	inst.EnrolledAt = e.now()

	enrolled := learner.Clone()
	enrolled.Enrollments[tmpl.ID] = inst.ID

	res, err := e.commit(ctx, "enroll", enrolled, inst, []rewards.Event{rewards.Enrolled(tmpl.ID, self)})
	if err != nil {
		return nil, err
	}
	e.log.Info("learner enrolled",
		"learner_id", learnerID,
		"template_id", tmpl.ID,
		"instance_id", inst.ID,
		"self_assigned", self,
	)
	return res, nil
}

// UpdateStreak records the learner's current daily streak as reported by
// an external activity tracker.
func (e *Engine) UpdateStreak(ctx context.Context, learnerID string, streak int) (*Result, error) {
	if streak < 0 {
		return nil, &course.ValidationError{Field: "streak", Reason: "must not be negative"}
	}

	unlock := e.locks.Lock(learnerID)
	defer unlock()

	learner, err := e.repo.GetLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if learner.Gamification.Streak == streak {
		return &Result{Learner: learner}, nil
	}
	return e.commit(ctx, "update streak", learner, nil, []rewards.Event{rewards.StreakUpdated(streak)})
}

// streakLookback bounds the reward history scanned by RefreshStreak.
const streakLookback = 366 * 24 * time.Hour

// RefreshStreak derives the streak from the learner's reward history and
// records it. Streak updates themselves do not count as activity.
func (e *Engine) RefreshStreak(ctx context.Context, learnerID string) (*Result, error) {
	now := e.now()
	history, err := e.repo.RewardHistory(ctx, learnerID, store.QueryOpts{From: now.Add(-streakLookback)})
	if err != nil {
		return nil, err
	}
	activity := make([]time.Time, 0, len(history))
	for _, r := range history {
		if r.Kind == string(rewards.EventStreakUpdated) {
			continue
		}
		activity = append(activity, r.Timestamp)
	}
	return e.UpdateStreak(ctx, learnerID, streak.Days(activity, now, nil))
}

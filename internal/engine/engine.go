// Package engine is the single entry surface of the progression core. It
// loads state, runs the pure state machines, feeds first-time transitions
// into the reward ledger, persists the outcome atomically and announces
// unlocked achievements.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/logging"
	"github.com/abhisek/skillpath/internal/notify"
	"github.com/abhisek/skillpath/internal/progression"
	"github.com/abhisek/skillpath/internal/rewards"
	"github.com/abhisek/skillpath/internal/store"
)

// Templates resolves course templates by ID.
type Templates interface {
	Get(id string) (*course.Template, error)
	List() []*course.Template
}

// Options configures an Engine.
type Options struct {
	Repo      store.Repository
	Templates Templates
	Publisher notify.Publisher
	Logger    *logging.Logger
	Now       func() time.Time
}

// Engine serializes writes per learner. All methods are safe for
// concurrent use.
type Engine struct {
	repo      store.Repository
	templates Templates
	publisher notify.Publisher
	log       *logging.Logger
	now       func() time.Time
	locks     *keyedMutex
}

func New(opts Options) (*Engine, error) {
	if opts.Repo == nil {
		return nil, errors.New("engine: repository is required")
	}
	if opts.Templates == nil {
		return nil, errors.New("engine: template catalog is required")
	}
	e := &Engine{
		repo:      opts.Repo,
		templates: opts.Templates,
		publisher: opts.Publisher,
		log:       opts.Logger,
		now:       opts.Now,
		locks:     newKeyedMutex(),
	}
	if e.log == nil {
		e.log = logging.Nop()
	}
	e.log = e.log.Named("engine")
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	return e, nil
}

// step is one pure state machine operation on an instance.
type step func(inst *course.Instance) (course.Progress, progression.Outcome, error)

// mutate runs fn on the current instance under the learner lock and
// persists the result.
func (e *Engine) mutate(ctx context.Context, op, instanceID string, fn step) (*Result, progression.Outcome, error) {
	owner, err := e.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, progression.Outcome{}, err
	}
	unlock := e.locks.Lock(owner.LearnerID)
	defer unlock()

	// Reload: another writer may have committed while we waited.
	inst, err := e.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, progression.Outcome{}, err
	}
	learner, err := e.repo.GetLearner(ctx, inst.LearnerID)
	if err != nil {
		return nil, progression.Outcome{}, err
	}

	p, out, err := fn(inst)
	if err != nil {
		e.log.Debug("operation rejected", "op", op, "instance_id", inst.ID, "error", err)
		return nil, out, fmt.Errorf("%s: %w", op, err)
	}
	if !out.Changed {
		return &Result{Instance: inst, Learner: learner}, out, nil
	}

	next := inst.WithProgress(p)
	res, err := e.commit(ctx, op, learner, next, out.Events)
	if err != nil {
		return nil, out, err
	}
	res.Transitions = out.Transitions
	return res, out, nil
}

// commit applies events to the learner, writes learner, instance and
// reward records together and publishes unlocks. inst may be nil for
// learner-only operations.
func (e *Engine) commit(ctx context.Context, op string, learner *course.Learner, inst *course.Instance, events []rewards.Event) (*Result, error) {
	now := e.now()
	next := learner.Clone()

	instanceID := ""
	if inst != nil {
		instanceID = inst.ID
	}

	var (
		unlocks []rewards.Unlock
		records []store.RewardRecord
	)
	for _, ev := range events {
		rec, granted := rewards.Apply(next.Gamification, ev)
		ids := make([]string, 0, len(granted))
		for _, u := range granted {
			ids = append(ids, string(u.Achievement.ID))
		}
		records = append(records, store.RewardRecord{
			LearnerID:    next.ID,
			InstanceID:   instanceID,
			Kind:         string(ev.Kind),
			Key:          ev.Key,
			XPDelta:      rec.XP - next.Gamification.XP,
			Achievements: ids,
			Timestamp:    now,
		})
		next.Gamification = rec
		unlocks = append(unlocks, granted...)
	}

	if err := e.repo.Commit(ctx, store.Commit{Learner: next, Instance: inst, Rewards: records}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &Result{
		Instance:      inst,
		Learner:       next,
		Changed:       true,
		XPGained:      next.Gamification.XP - learner.Gamification.XP,
		Notifications: notify.FromUnlocks(next, unlocks, now),
	}
	e.log.Debug("operation applied",
		"op", op,
		"learner_id", next.ID,
		"instance_id", instanceID,
		"xp", next.Gamification.XP,
		"xp_gained", res.XPGained,
		"unlocked", len(unlocks),
	)
	e.publish(ctx, res.Notifications)
	return res, nil
}

// publish is best effort: failures are logged, never returned.
func (e *Engine) publish(ctx context.Context, ns []notify.Notification) {
	if e.publisher == nil {
		return
	}
	for _, n := range ns {
		if err := e.publisher.Publish(ctx, n); err != nil {
			e.log.Warn("notification not delivered",
				"learner_id", n.LearnerID,
				"achievement", n.AchievementID,
				"error", err,
			)
		}
	}
}

package engine

import (
	"context"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/progression"
	"github.com/abhisek/skillpath/internal/store"
)

func (e *Engine) Learner(ctx context.Context, id string) (*course.Learner, error) {
	return e.repo.GetLearner(ctx, id)
}

func (e *Engine) Instance(ctx context.Context, id string) (*course.Instance, error) {
	return e.repo.GetInstance(ctx, id)
}

// Enrollments lists the learner's course instances.
func (e *Engine) Enrollments(ctx context.Context, learnerID string) ([]*course.Instance, error) {
	return e.repo.ListInstances(ctx, learnerID)
}

// RewardHistory returns the learner's reward audit log, newest first.
func (e *Engine) RewardHistory(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.RewardRecord, error) {
	return e.repo.RewardHistory(ctx, learnerID, opts)
}

// Templates lists the catalog.
func (e *Engine) Templates() []*course.Template {
	return e.templates.List()
}

// ExamEligible reports whether the instance may start a final exam attempt.
func (e *Engine) ExamEligible(ctx context.Context, instanceID string) (bool, error) {
	inst, err := e.repo.GetInstance(ctx, instanceID)
	if err != nil {
		return false, err
	}
	return progression.ExamEligible(inst, inst.Progress), nil
}

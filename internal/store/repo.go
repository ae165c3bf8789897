package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/skillpath/internal/course"
)

// ErrNotFound is returned when a learner or instance does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures reward history queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// RewardRecord is one entry of the reward audit log: the XP and
// achievements a single reward event granted.
type RewardRecord struct {
	ID           string    `json:"id"`
	LearnerID    string    `json:"learner_id"`
	InstanceID   string    `json:"instance_id,omitempty"`
	Kind         string    `json:"kind"`
	Key          string    `json:"key,omitempty"`
	XPDelta      int       `json:"xp_delta"`
	Achievements []string  `json:"achievements,omitempty"`
	Sequence     int64     `json:"sequence"`
	Timestamp    time.Time `json:"timestamp"`
}

// Commit is the unit of persistence of one engine operation. Learner and
// Instance are written together with the reward records, or not at all.
type Commit struct {
	Learner  *course.Learner
	Instance *course.Instance
	Rewards  []RewardRecord
}

// Repository persists learners, course instances and the reward log.
type Repository interface {
	GetLearner(ctx context.Context, id string) (*course.Learner, error)
	SaveLearner(ctx context.Context, l *course.Learner) error

	GetInstance(ctx context.Context, id string) (*course.Instance, error)
	// ListInstances returns the learner's instances, oldest enrollment first.
	ListInstances(ctx context.Context, learnerID string) ([]*course.Instance, error)

	// Commit atomically writes the non-nil parts of c. Reward records get
	// their sequence and timestamp assigned here.
	Commit(ctx context.Context, c Commit) error

	// RewardHistory returns reward records of a learner, newest first.
	RewardHistory(ctx context.Context, learnerID string, opts QueryOpts) ([]RewardRecord, error)

	Close() error
}

// FilterRewards applies opts to records already sorted newest first.
// Backends without server-side filtering share it.
func FilterRewards(records []RewardRecord, opts QueryOpts) []RewardRecord {
	out := make([]RewardRecord, 0, len(records))
	for _, r := range records {
		if opts.After > 0 && r.Sequence <= opts.After {
			continue
		}
		if opts.Before > 0 && r.Sequence >= opts.Before {
			continue
		}
		if !opts.From.IsZero() && r.Timestamp.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && r.Timestamp.After(opts.To) {
			continue
		}
		out = append(out, r)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

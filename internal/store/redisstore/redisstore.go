// Package redisstore keeps learners, course instances and the reward log
// in Redis. Documents use the same versioned format as the SQL store.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/store"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Prefix namespaces every key, e.g. "skillpath:".
	Prefix string `yaml:"prefix"`

	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// DefaultConfig returns settings for a local Redis.
func DefaultConfig() Config {
	return Config{
		Addr:        "localhost:6379",
		Prefix:      "skillpath:",
		DialTimeout: 5 * time.Second,
	}
}

// Store implements store.Repository on Redis.
//
// Keys:
//
//	learner:{id}            learner document
//	instance:{id}           instance document
//	learner:{id}:instances  sorted set of instance IDs scored by enrollment time
//	learner:{id}:templates  hash template ID -> instance ID
//	learner:{id}:rewards    list of reward records, newest first
//	seq:rewards             reward sequence counter
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ store.Repository = (*Store)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewFromClient(rdb, cfg.Prefix), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

// Client exposes the connection so publishers can share it.
func (s *Store) Client() *redis.Client { return s.rdb }

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) learnerKey(id string) string   { return s.prefix + "learner:" + id }
func (s *Store) instanceKey(id string) string  { return s.prefix + "instance:" + id }
func (s *Store) instancesKey(id string) string { return s.prefix + "learner:" + id + ":instances" }
func (s *Store) templatesKey(id string) string { return s.prefix + "learner:" + id + ":templates" }
func (s *Store) rewardsKey(id string) string   { return s.prefix + "learner:" + id + ":rewards" }
func (s *Store) seqKey() string                { return s.prefix + "seq:rewards" }

func (s *Store) GetLearner(ctx context.Context, id string) (*course.Learner, error) {
	b, err := s.rdb.Get(ctx, s.learnerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("learner %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return store.DecodeLearner(b)
}

func (s *Store) SaveLearner(ctx context.Context, l *course.Learner) error {
	doc, err := store.EncodeLearner(l)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.learnerKey(l.ID), doc, 0).Err(); err != nil {
		return fmt.Errorf("save learner %s: %w", l.ID, err)
	}
	return nil
}

func (s *Store) GetInstance(ctx context.Context, id string) (*course.Instance, error) {
	b, err := s.rdb.Get(ctx, s.instanceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("instance %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return store.DecodeInstance(b)
}

func (s *Store) ListInstances(ctx context.Context, learnerID string) ([]*course.Instance, error) {
	ids, err := s.rdb.ZRange(ctx, s.instancesKey(learnerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.instanceKey(id)
	}
	docs, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load instances: %w", err)
	}

	out := make([]*course.Instance, 0, len(docs))
	for _, d := range docs {
		raw, ok := d.(string)
		if !ok {
			continue
		}
		inst, err := store.DecodeInstance([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Commit writes c in a MULTI/EXEC block. Sequences are reserved up front
// with INCRBY, so an aborted commit leaves a gap.
func (s *Store) Commit(ctx context.Context, c store.Commit) error {
	var learnerDoc, instanceDoc []byte
	var err error
	if c.Learner != nil {
		if learnerDoc, err = store.EncodeLearner(c.Learner); err != nil {
			return err
		}
	}
	if c.Instance != nil {
		if err := s.checkEnrollment(ctx, c.Instance); err != nil {
			return err
		}
		if instanceDoc, err = store.EncodeInstance(c.Instance); err != nil {
			return err
		}
	}

	rewards := make([][]byte, len(c.Rewards))
	if n := int64(len(c.Rewards)); n > 0 {
		last, err := s.rdb.IncrBy(ctx, s.seqKey(), n).Result()
		if err != nil {
			return fmt.Errorf("reserve reward sequence: %w", err)
		}
		for i := range c.Rewards {
			r := &c.Rewards[i]
			r.Sequence = last - n + int64(i) + 1
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			if r.Timestamp.IsZero() {
				r.Timestamp = time.Now().UTC()
			}
			if rewards[i], err = json.Marshal(r); err != nil {
				return fmt.Errorf("encode reward: %w", err)
			}
		}
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if c.Learner != nil {
			pipe.Set(ctx, s.learnerKey(c.Learner.ID), learnerDoc, 0)
		}
		if inst := c.Instance; inst != nil {
			pipe.Set(ctx, s.instanceKey(inst.ID), instanceDoc, 0)
			pipe.ZAddNX(ctx, s.instancesKey(inst.LearnerID), redis.Z{
				Score:  float64(inst.EnrolledAt.UnixNano()),
				Member: inst.ID,
			})
			pipe.HSetNX(ctx, s.templatesKey(inst.LearnerID), inst.TemplateID, inst.ID)
		}
		for i, r := range c.Rewards {
			pipe.LPush(ctx, s.rewardsKey(r.LearnerID), rewards[i])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) checkEnrollment(ctx context.Context, inst *course.Instance) error {
	existing, err := s.rdb.HGet(ctx, s.templatesKey(inst.LearnerID), inst.TemplateID).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return fmt.Errorf("check enrollment: %w", err)
	case existing != inst.ID:
		return &course.DuplicateEnrollmentError{LearnerID: inst.LearnerID, TemplateID: inst.TemplateID, InstanceID: existing}
	}
	return nil
}

func (s *Store) RewardHistory(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.RewardRecord, error) {
	raw, err := s.rdb.LRange(ctx, s.rewardsKey(learnerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reward history: %w", err)
	}
	records := make([]store.RewardRecord, 0, len(raw))
	for _, item := range raw {
		var r store.RewardRecord
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode reward: %w", err)
		}
		records = append(records, r)
	}
	return store.FilterRewards(records, opts), nil
}

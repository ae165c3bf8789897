package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillpath/internal/course"
)

// timeLayout sorts lexically for UTC timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// RewardColumns is the column order of reward queries.
var RewardColumns = []string{"id", "learner_id", "instance_id", "kind", "item_key", "xp_delta", "achievements", "sequence", "timestamp"}

func (s *Store) GetLearner(ctx context.Context, id string) (*course.Learner, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(TableLearners)).
		Where(entsql.EQ("id", id)).
		Query()

	var doc string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("learner %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return DecodeLearner([]byte(doc))
}

func (s *Store) SaveLearner(ctx context.Context, l *course.Learner) error {
	return s.upsertLearner(ctx, s.db, l)
}

func (s *Store) GetInstance(ctx context.Context, id string) (*course.Instance, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(TableInstances)).
		Where(entsql.EQ("id", id)).
		Query()

	var doc string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("instance %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return DecodeInstance([]byte(doc))
}

func (s *Store) ListInstances(ctx context.Context, learnerID string) ([]*course.Instance, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(TableInstances)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("enrolled_at", "id").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var out []*course.Instance
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		inst, err := DecodeInstance([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// Commit writes c in one transaction. Sequences and timestamps are
// assigned in place on c.Rewards.
func (s *Store) Commit(ctx context.Context, c Commit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	if c.Learner != nil {
		if err := s.upsertLearner(ctx, tx, c.Learner); err != nil {
			return err
		}
	}
	if c.Instance != nil {
		if err := s.upsertInstance(ctx, tx, c.Instance); err != nil {
			return err
		}
	}
	for i := range c.Rewards {
		if err := s.appendReward(ctx, tx, &c.Rewards[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) RewardHistory(ctx context.Context, learnerID string, opts QueryOpts) ([]RewardRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", stamp(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", stamp(opts.To)))
	}

	sel := s.b.Select(RewardColumns...).
		From(s.b.Table(TableRewards)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reward history: %w", err)
	}
	defer rows.Close()

	var out []RewardRecord
	for rows.Next() {
		var (
			r            RewardRecord
			achievements string
			ts           string
		)
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.InstanceID, &r.Kind, &r.Key, &r.XPDelta, &achievements, &r.Sequence, &ts); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		if err := json.Unmarshal([]byte(achievements), &r.Achievements); err != nil {
			return nil, fmt.Errorf("decode reward achievements: %w", err)
		}
		if r.Timestamp, err = parseStamp(ts); err != nil {
			return nil, fmt.Errorf("decode reward timestamp: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) upsertLearner(ctx context.Context, q querier, l *course.Learner) error {
	doc, err := EncodeLearner(l)
	if err != nil {
		return err
	}
	query, args := s.b.Insert(TableLearners).
		Columns("id", "name", "document", "created_at", "updated_at").
		Values(l.ID, l.Name, string(doc), stamp(l.CreatedAt), stamp(time.Now())).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save learner %s: %w", l.ID, err)
	}
	return nil
}

func (s *Store) upsertInstance(ctx context.Context, q querier, inst *course.Instance) error {
	doc, err := EncodeInstance(inst)
	if err != nil {
		return err
	}
	query, args := s.b.Insert(TableInstances).
		Columns("id", "learner_id", "template_id", "status", "document", "enrolled_at", "updated_at").
		Values(inst.ID, inst.LearnerID, inst.TemplateID, string(inst.Progress.Status), string(doc), stamp(inst.EnrolledAt), stamp(time.Now())).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &course.DuplicateEnrollmentError{LearnerID: inst.LearnerID, TemplateID: inst.TemplateID, InstanceID: inst.ID}
		}
		return fmt.Errorf("save instance %s: %w", inst.ID, err)
	}
	return nil
}

func (s *Store) appendReward(ctx context.Context, q querier, r *RewardRecord) error {
	seq, err := s.seq.Next(ctx, q)
	if err != nil {
		return err
	}
	r.Sequence = seq
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
	achievements, err := json.Marshal(r.Achievements)
	if err != nil {
		return fmt.Errorf("encode reward achievements: %w", err)
	}

	query, args := s.b.Insert(TableRewards).
		Columns(RewardColumns...).
		Values(r.ID, r.LearnerID, r.InstanceID, r.Kind, r.Key, r.XPDelta, string(achievements), r.Sequence, stamp(r.Timestamp)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append reward: %w", err)
	}
	return nil
}

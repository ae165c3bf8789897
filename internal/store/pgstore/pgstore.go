// Package pgstore keeps learners, course instances and the reward log in
// PostgreSQL. Documents are stored as jsonb in the shared versioned format.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/skillpath/internal/course"
	"github.com/abhisek/skillpath/internal/store"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// Store implements store.Repository on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	b    *entsql.DialectBuilder
}

var _ store.Repository = (*Store)(nil)

// Open connects, verifies the connection and creates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping database: %w", err)
	}

	s := &Store{pool: pool, b: entsql.Dialect(dialect.Postgres)}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS learners (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instances (
		id TEXT PRIMARY KEY,
		learner_id TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		template_id TEXT NOT NULL,
		status TEXT NOT NULL,
		document JSONB NOT NULL,
		enrolled_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (learner_id, template_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_events (
		sequence BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		learner_id TEXT NOT NULL REFERENCES learners(id) ON DELETE CASCADE,
		instance_id TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		item_key TEXT NOT NULL DEFAULT '',
		xp_delta INTEGER NOT NULL,
		achievements JSONB NOT NULL DEFAULT '[]',
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reward_events_learner ON reward_events (learner_id, sequence)`,
}

// Migrate creates missing tables. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) GetLearner(ctx context.Context, id string) (*course.Learner, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(store.TableLearners)).
		Where(entsql.EQ("id", id)).
		Query()

	var doc []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("learner %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return store.DecodeLearner(doc)
}

func (s *Store) SaveLearner(ctx context.Context, l *course.Learner) error {
	return s.upsertLearner(ctx, s.pool, l)
}

func (s *Store) GetInstance(ctx context.Context, id string) (*course.Instance, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(store.TableInstances)).
		Where(entsql.EQ("id", id)).
		Query()

	var doc []byte
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("instance %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}
	return store.DecodeInstance(doc)
}

func (s *Store) ListInstances(ctx context.Context, learnerID string) ([]*course.Instance, error) {
	query, args := s.b.Select("document").
		From(s.b.Table(store.TableInstances)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("enrolled_at", "id").
		Query()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan instances: %w", err)
	}

	out := make([]*course.Instance, 0, len(docs))
	for _, doc := range docs {
		inst, err := store.DecodeInstance(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

// Commit writes c in one transaction. Sequences come from the table's
// BIGSERIAL and are assigned in place on c.Rewards.
func (s *Store) Commit(ctx context.Context, c store.Commit) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

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

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) RewardHistory(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.RewardRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To))
	}

	sel := s.b.Select(store.RewardColumns...).
		From(s.b.Table(store.TableRewards)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reward history: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.RewardRecord, error) {
		var r store.RewardRecord
		err := row.Scan(&r.ID, &r.LearnerID, &r.InstanceID, &r.Kind, &r.Key, &r.XPDelta, &r.Achievements, &r.Sequence, &r.Timestamp)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan reward history: %w", err)
	}
	return out, nil
}

// execer is satisfied by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) upsertLearner(ctx context.Context, q execer, l *course.Learner) error {
	doc, err := store.EncodeLearner(l)
	if err != nil {
		return err
	}
	query, args := s.b.Insert(store.TableLearners).
		Columns("id", "name", "document", "created_at", "updated_at").
		Values(l.ID, l.Name, string(doc), l.CreatedAt, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save learner %s: %w", l.ID, err)
	}
	return nil
}

func (s *Store) upsertInstance(ctx context.Context, q execer, inst *course.Instance) error {
	doc, err := store.EncodeInstance(inst)
	if err != nil {
		return err
	}
	query, args := s.b.Insert(store.TableInstances).
		Columns("id", "learner_id", "template_id", "status", "document", "enrolled_at", "updated_at").
		Values(inst.ID, inst.LearnerID, inst.TemplateID, string(inst.Progress.Status), string(doc), inst.EnrolledAt, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return &course.DuplicateEnrollmentError{LearnerID: inst.LearnerID, TemplateID: inst.TemplateID, InstanceID: inst.ID}
		}
		return fmt.Errorf("save instance %s: %w", inst.ID, err)
	}
	return nil
}

func (s *Store) appendReward(ctx context.Context, q execer, r *store.RewardRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.Achievements == nil {
		r.Achievements = []string{}
	}

	query, args := s.b.Insert(store.TableRewards).
		Columns("id", "learner_id", "instance_id", "kind", "item_key", "xp_delta", "achievements", "timestamp").
		Values(r.ID, r.LearnerID, r.InstanceID, r.Kind, r.Key, r.XPDelta, r.Achievements, r.Timestamp).
		Returning("sequence").
		Query()
	if err := q.QueryRow(ctx, query, args...).Scan(&r.Sequence); err != nil {
		return fmt.Errorf("append reward: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

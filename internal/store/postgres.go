package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"

	"weightnav/internal/model"
)

// schema is applied by Migrate; statements are idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS solutions (
    id          uuid PRIMARY KEY,
    input_key   text NOT NULL,
    label       text,
    w0          double precision NOT NULL,
    targets     jsonb NOT NULL,
    visit_order jsonb NOT NULL,
    length      double precision NOT NULL,
    reachable   integer NOT NULL,
    metrics     jsonb NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS solutions_input_key_idx ON solutions (input_key, created_at DESC);
CREATE INDEX IF NOT EXISTS solutions_created_idx ON solutions (created_at, id);
`

const selectColumns = `SELECT id::text, input_key, label, w0, targets, visit_order, length, reachable, metrics, created_at FROM solutions`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

// Migrate creates the solutions table and its indexes.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "migrate")
}

func (p *Postgres) SaveSolution(ctx context.Context, rec model.SolutionRecord) (model.SolutionRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	targets, err := json.Marshal(rec.Targets)
	if err != nil {
		return model.SolutionRecord{}, errors.Wrap(err, "encode targets")
	}
	order, err := json.Marshal(rec.Order)
	if err != nil {
		return model.SolutionRecord{}, errors.Wrap(err, "encode order")
	}
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return model.SolutionRecord{}, errors.Wrap(err, "encode metrics")
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO solutions (id, input_key, label, w0, targets, visit_order, length, reachable, metrics, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO UPDATE SET visit_order=EXCLUDED.visit_order, length=EXCLUDED.length, metrics=EXCLUDED.metrics`,
		rec.ID, rec.InputKey, nullIfEmpty(rec.Label), rec.W0, targets, order, rec.Length, rec.Reachable, metrics, rec.CreatedAt)
	if err != nil {
		return model.SolutionRecord{}, errors.Wrap(err, "insert solution")
	}
	return rec, nil
}

func (p *Postgres) GetSolution(ctx context.Context, id string) (model.SolutionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.SolutionRecord{}, ErrNotFound
	}
	return p.scanOne(p.db.QueryRowContext(ctx, selectColumns+` WHERE id=$1`, id))
}

func (p *Postgres) FindByInputKey(ctx context.Context, key string) (model.SolutionRecord, error) {
	return p.scanOne(p.db.QueryRowContext(ctx, selectColumns+` WHERE input_key=$1 ORDER BY created_at DESC LIMIT 1`, key))
}

func (p *Postgres) ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionRecord, string, error) {
	limit = clampLimit(limit)
	var rows *sql.Rows
	var err error
	if cursor != "" {
		if _, perr := uuid.Parse(cursor); perr != nil {
			return nil, "", errors.Errorf("invalid cursor %q", cursor)
		}
		rows, err = p.db.QueryContext(ctx, selectColumns+` WHERE (created_at, id) > (SELECT created_at, id FROM solutions WHERE id=$1) ORDER BY created_at, id LIMIT $2`, cursor, limit+1)
	} else {
		rows, err = p.db.QueryContext(ctx, selectColumns+` ORDER BY created_at, id LIMIT $1`, limit+1)
	}
	if err != nil {
		return nil, "", errors.Wrap(err, "list solutions")
	}
	defer rows.Close()
	out := []model.SolutionRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", errors.Wrap(err, "list solutions")
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, nil
}

func (p *Postgres) scanOne(row *sql.Row) (model.SolutionRecord, error) {
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionRecord{}, ErrNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (model.SolutionRecord, error) {
	var rec model.SolutionRecord
	var label sql.NullString
	var targets, order, metrics []byte
	if err := s.Scan(&rec.ID, &rec.InputKey, &label, &rec.W0, &targets, &order, &rec.Length, &rec.Reachable, &metrics, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, errors.Wrap(err, "scan solution")
	}
	rec.Label = label.String
	if err := decodeColumns(targets, order, metrics, &rec); err != nil {
		return model.SolutionRecord{}, err
	}
	return rec, nil
}

func decodeColumns(targets, order, metrics []byte, rec *model.SolutionRecord) error {
	if err := json.Unmarshal(targets, &rec.Targets); err != nil {
		return errors.Wrap(err, "decode targets")
	}
	if err := json.Unmarshal(order, &rec.Order); err != nil {
		return errors.Wrap(err, "decode order")
	}
	if rec.Order == nil {
		rec.Order = []int{}
	}
	if err := json.Unmarshal(metrics, &rec.Metrics); err != nil {
		return errors.Wrap(err, "decode metrics")
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

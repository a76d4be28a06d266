package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when no plan has the requested ID.
var ErrNotFound = errors.New("plan not found")

// ─── Models ──────────────────────────────────────────────────────────────────

type PlanRecord struct {
	ID           string    `json:"id"`
	Destination  string    `json:"destination"`
	NumDays      int       `json:"num_days"`
	Budget       string    `json:"budget"`
	Currency     string    `json:"currency"`
	PlanJSON     string    `json:"plan_json"`
	PDFData      []byte    `json:"pdf_data,omitempty"` // stored in DB, no filesystem needed
	TravelerName string    `json:"traveler_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists generated plans.
type Store interface {
	SavePlan(ctx context.Context, p *PlanRecord) error
	GetPlan(ctx context.Context, id string) (*PlanRecord, error)
	UpdatePlanPDF(ctx context.Context, id string, pdfData []byte, travelerName string) error
	ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// ─── Postgres ─────────────────────────────────────────────────────────────────

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open handle; callers own migration.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects, waits for the server and migrates.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The database container may take a moment to accept connections
	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("✅ Database connected and migrated")
	return s, nil
}

// ─── Migrations ───────────────────────────────────────────────────────────────

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		destination   TEXT NOT NULL,
		num_days      INTEGER NOT NULL,
		budget        TEXT NOT NULL,
		currency      TEXT NOT NULL,
		plan_json     TEXT NOT NULL,
		pdf_data      BYTEA,
		traveler_name TEXT,
		created_at    TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plans_created_at
		ON plans(created_at DESC)`,
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── CRUD ─────────────────────────────────────────────────────────────────────

func (s *PostgresStore) SavePlan(ctx context.Context, p *PlanRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (id, destination, num_days, budget, currency, plan_json, traveler_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Destination, p.NumDays, p.Budget, p.Currency, p.PlanJSON, p.TravelerName)
	return err
}

func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*PlanRecord, error) {
	p := &PlanRecord{}
	var traveler sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, destination, num_days, budget, currency, plan_json, pdf_data, traveler_name, created_at
		FROM plans WHERE id = $1`, id).
		Scan(&p.ID, &p.Destination, &p.NumDays, &p.Budget, &p.Currency,
			&p.PlanJSON, &p.PDFData, &traveler, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.TravelerName = traveler.String
	return p, nil
}

func (s *PostgresStore) UpdatePlanPDF(ctx context.Context, id string, pdfData []byte, travelerName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE plans SET pdf_data = $1, traveler_name = $2 WHERE id = $3`,
		pdfData, travelerName, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecentPlans returns plan metadata, newest first, without PDF bytes.
func (s *PostgresStore) ListRecentPlans(ctx context.Context, limit int) ([]PlanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, destination, num_days, budget, currency, plan_json, created_at
		FROM plans ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanRecord
	for rows.Next() {
		var p PlanRecord
		if err := rows.Scan(&p.ID, &p.Destination, &p.NumDays, &p.Budget, &p.Currency, &p.PlanJSON, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Package repository persists run summaries and fraud alerts.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a run summary.
func (r *SQLRepository) SaveRun(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run ID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO runs (
			id, input_path, started_at, finished_at,
			transactions, accounts, fraud_flagged, engine_version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		run.ID, run.InputPath, run.StartedAt, run.FinishedAt,
		run.Transactions, run.Accounts, run.FraudFlagged, run.EngineVersion,
	)
	return err
}

// GetRun retrieves a run summary by ID.
func (r *SQLRepository) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	query := `
		SELECT id, input_path, started_at, finished_at,
			   transactions, accounts, fraud_flagged, engine_version
		FROM runs
		WHERE id = ?
	`

	var run domain.Run
	err := r.db.QueryRowContext(ctx, r.rebind(query), runID).Scan(
		&run.ID, &run.InputPath, &run.StartedAt, &run.FinishedAt,
		&run.Transactions, &run.Accounts, &run.FraudFlagged, &run.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// ListRuns retrieves the most recent runs, newest first.
func (r *SQLRepository) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, input_path, started_at, finished_at,
			   transactions, accounts, fraud_flagged, engine_version
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		var run domain.Run
		if err := rows.Scan(
			&run.ID, &run.InputPath, &run.StartedAt, &run.FinishedAt,
			&run.Transactions, &run.Accounts, &run.FraudFlagged, &run.EngineVersion,
		); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// SaveAlerts stores fraud alerts in a single transaction.
func (r *SQLRepository) SaveAlerts(ctx context.Context, alerts []*domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := r.rebind(`
		INSERT INTO fraud_alerts (
			run_id, transaction_id, account_id, transaction_date,
			amount, risk_score, signals, merchant_category,
			location, channel, is_international
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range alerts {
		signals, _ := json.Marshal(a.Signals)

		intl := 0
		if a.International {
			intl = 1
		}

		if _, err := stmt.ExecContext(ctx,
			a.RunID, a.TransactionID, a.AccountID, a.Date,
			a.Amount, a.RiskScore, string(signals), a.MerchantCategory,
			a.Location, a.Channel, intl,
		); err != nil {
			return fmt.Errorf("failed to save alert for transaction %d: %w", a.TransactionID, err)
		}
	}

	return tx.Commit()
}

// ListAlertsByRun retrieves the alerts of one run, highest score first.
func (r *SQLRepository) ListAlertsByRun(ctx context.Context, runID string) ([]*domain.Alert, error) {
	query := `
		SELECT run_id, transaction_id, account_id, transaction_date,
			   amount, risk_score, signals, merchant_category,
			   location, channel, is_international
		FROM fraud_alerts
		WHERE run_id = ?
		ORDER BY risk_score DESC, transaction_id
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		var signals string
		var intl int

		if err := rows.Scan(
			&a.RunID, &a.TransactionID, &a.AccountID, &a.Date,
			&a.Amount, &a.RiskScore, &signals, &a.MerchantCategory,
			&a.Location, &a.Channel, &intl,
		); err != nil {
			return nil, err
		}

		a.International = intl == 1
		json.Unmarshal([]byte(signals), &a.Signals)
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

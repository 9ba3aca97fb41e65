package domain

import "context"

// Repository persists run summaries and fraud alerts between batch runs.
type Repository interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	SaveAlerts(ctx context.Context, alerts []*Alert) error
	ListAlertsByRun(ctx context.Context, runID string) ([]*Alert, error)

	Ping(ctx context.Context) error
	Close() error
}

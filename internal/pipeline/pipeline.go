// Package pipeline wires the batch run: load, evaluate, score, report.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/opensource-finance/kestrel/internal/bus"
	"github.com/opensource-finance/kestrel/internal/cache"
	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/metrics"
	"github.com/opensource-finance/kestrel/internal/patterns"
	"github.com/opensource-finance/kestrel/internal/report"
	"github.com/opensource-finance/kestrel/internal/repository"
	"github.com/opensource-finance/kestrel/internal/rules"
	"github.com/opensource-finance/kestrel/internal/scoring"
)

// EngineVersion is recorded on every persisted run.
const EngineVersion = "kestrel-1.0"

// Pipeline runs one batch analysis from input CSV to reports and
// optional sinks.
type Pipeline struct {
	cfg       *domain.Config
	repo      domain.Repository
	bus       domain.EventBus
	dedup     domain.DedupStore
	engine    *rules.Engine
	collector *metrics.Collector
	tracer    trace.Tracer
}

// New builds a pipeline and its configured sinks. Sinks configured as
// "none" stay nil and are skipped at run time.
func New(cfg *domain.Config) (*Pipeline, error) {
	p := &Pipeline{
		cfg:       cfg,
		collector: metrics.NewCollector(),
		tracer:    otel.Tracer("kestrel"),
	}

	if cfg.Repository.Driver != "" && cfg.Repository.Driver != "none" {
		repo, err := repository.New(cfg.Repository)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize repository: %w", err)
		}
		p.repo = repo
	}

	if cfg.Bus.Type != "" && cfg.Bus.Type != "none" {
		b, err := bus.New(cfg.Bus)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
		p.bus = b
	}

	if cfg.Dedup.Type != "" && cfg.Dedup.Type != "none" {
		d, err := cache.New(cfg.Dedup)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to initialize dedup store: %w", err)
		}
		p.dedup = d
	}

	if cfg.RulesPath != "" {
		engine, err := rules.NewEngine()
		if err != nil {
			p.Close()
			return nil, err
		}
		configs, err := rules.LoadFile(cfg.RulesPath)
		if err != nil {
			p.Close()
			return nil, err
		}
		if err := engine.LoadRules(configs); err != nil {
			p.Close()
			return nil, err
		}
		p.engine = engine
		slog.Info("custom rules loaded", "count", engine.RulesCount())
	}

	return p, nil
}

// Bus exposes the event bus so embedded consumers can subscribe before
// the run publishes alerts.
func (p *Pipeline) Bus() domain.EventBus {
	return p.bus
}

// Close releases the pipeline's sinks.
func (p *Pipeline) Close() {
	if p.repo != nil {
		_ = p.repo.Close()
	}
	if p.bus != nil {
		_ = p.bus.Close()
	}
	if p.dedup != nil {
		_ = p.dedup.Close()
	}
}

// Run executes one batch analysis. Any error aborts the run; reports
// already written stay on disk but the run counts as failed.
func (p *Pipeline) Run(ctx context.Context) (*domain.Run, error) {
	started := time.Now().UTC()

	run := &domain.Run{
		ID:            uuid.New().String(),
		InputPath:     p.cfg.InputPath,
		StartedAt:     started,
		EngineVersion: EngineVersion,
	}

	ctx, span := p.tracer.Start(ctx, "kestrel.run",
		trace.WithAttributes(attribute.String("run.id", run.ID)))
	defer span.End()

	table, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	run.Transactions = table.Len()
	run.Accounts = table.AccountCount()
	p.collector.RecordLoad(table.Len(), table.AccountCount())
	slog.Info("ledger loaded",
		"transactions", table.Len(),
		"accounts", table.AccountCount(),
	)

	res := p.evaluate(ctx, table)

	extras, err := p.customRules(ctx, table, res)
	if err != nil {
		return nil, err
	}

	sc := p.score(ctx, table, res, extras)
	run.FraudFlagged = len(sc.Rows)
	slog.Info("scoring complete",
		"fraud_suspected", len(sc.Rows),
		"high_amount", len(res.HighAmount.Rows),
		"rapid_fire_groups", len(res.RapidFire.Groups),
		"location_anomalies", len(res.Location.Rows),
		"risky_merchant_accounts", len(res.Merchant.Accounts),
		"balance_drains", len(res.BalanceDrain.Rows),
	)

	if err := p.writeReports(ctx, res, sc); err != nil {
		return nil, err
	}

	run.FinishedAt = time.Now().UTC()

	if err := p.persist(ctx, run, sc); err != nil {
		return nil, err
	}
	if err := p.publish(ctx, run, sc); err != nil {
		return nil, err
	}

	p.collector.RecordDuration(run.FinishedAt.Sub(started))
	if err := p.collector.Push(ctx, p.cfg.Metrics.PushgatewayURL, p.cfg.Metrics.JobName); err != nil {
		return nil, err
	}

	return run, nil
}

func (p *Pipeline) load(ctx context.Context) (*dataset.Table, error) {
	_, span := p.tracer.Start(ctx, "kestrel.load")
	defer span.End()

	return dataset.Load(p.cfg.InputPath)
}

func (p *Pipeline) evaluate(ctx context.Context, table *dataset.Table) *patterns.Results {
	res := &patterns.Results{}

	stage := func(name string, fn func()) {
		_, span := p.tracer.Start(ctx, "kestrel.pattern."+name)
		defer span.End()
		fn()
	}

	stage("high_amount", func() { res.HighAmount = patterns.EvaluateHighAmount(table) })
	stage("rapid_fire", func() { res.RapidFire = patterns.EvaluateRapidFire(table) })
	stage("location", func() { res.Location = patterns.EvaluateLocation(table) })
	stage("merchant", func() { res.Merchant = patterns.EvaluateMerchant(table) })
	stage("balance_drain", func() { res.BalanceDrain = patterns.EvaluateBalanceDrain(table) })

	p.collector.RecordPattern(scoring.SignalHighAmount, len(res.HighAmount.Rows))
	p.collector.RecordPattern(scoring.SignalRapidFire, len(res.RapidFire.Flagged))
	p.collector.RecordPattern(scoring.SignalLocationAnomaly, len(res.Location.Rows))
	p.collector.RecordPattern(scoring.SignalRiskyMerchant, len(res.Merchant.Accounts))
	p.collector.RecordPattern(scoring.SignalBalanceDrain, len(res.BalanceDrain.Rows))

	return res
}

func (p *Pipeline) customRules(ctx context.Context, table *dataset.Table, res *patterns.Results) (map[int64][]scoring.ExtraSignal, error) {
	if p.engine == nil {
		return nil, nil
	}

	_, span := p.tracer.Start(ctx, "kestrel.custom_rules")
	defer span.End()

	firings, err := p.engine.EvaluateTable(table, res)
	if err != nil {
		return nil, err
	}

	extras := make(map[int64][]scoring.ExtraSignal, len(firings))
	for txID, fs := range firings {
		for _, f := range fs {
			extras[txID] = append(extras[txID], scoring.ExtraSignal{
				ID:     f.RuleID,
				Weight: f.Weight,
			})
		}
	}
	return extras, nil
}

func (p *Pipeline) score(ctx context.Context, table *dataset.Table, res *patterns.Results, extras map[int64][]scoring.ExtraSignal) *scoring.Result {
	_, span := p.tracer.Start(ctx, "kestrel.score")
	defer span.End()

	sc := scoring.Score(table, res, extras)

	for _, txID := range sortedIDs(sc.Scores) {
		p.collector.RecordScore(sc.Scores[txID], sc.Suspected[txID])
	}
	return sc
}

func (p *Pipeline) writeReports(ctx context.Context, res *patterns.Results, sc *scoring.Result) error {
	_, span := p.tracer.Start(ctx, "kestrel.reports")
	defer span.End()

	w, err := report.NewWriter(p.cfg.OutputDir)
	if err != nil {
		return err
	}
	if err := w.WriteAll(res, sc); err != nil {
		return err
	}

	slog.Info("reports written", "dir", p.cfg.OutputDir)
	return nil
}

func (p *Pipeline) persist(ctx context.Context, run *domain.Run, sc *scoring.Result) error {
	if p.repo == nil {
		return nil
	}

	_, span := p.tracer.Start(ctx, "kestrel.persist")
	defer span.End()

	if err := p.repo.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if err := p.repo.SaveAlerts(ctx, alertsFromRows(run.ID, sc.Rows)); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}

	slog.Info("run persisted", "run_id", run.ID, "alerts", len(sc.Rows))
	return nil
}

func (p *Pipeline) publish(ctx context.Context, run *domain.Run, sc *scoring.Result) error {
	if p.bus == nil {
		return nil
	}

	_, span := p.tracer.Start(ctx, "kestrel.publish")
	defer span.End()

	ttl := time.Duration(p.cfg.Dedup.TTLSecs) * time.Second
	published := 0
	skipped := 0

	for _, alert := range alertsFromRows(run.ID, sc.Rows) {
		if p.dedup != nil {
			seen, err := p.dedup.Seen(ctx, alert.DedupKey())
			if err != nil {
				return fmt.Errorf("dedup lookup failed: %w", err)
			}
			if seen {
				skipped++
				continue
			}
		}

		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		if err := p.bus.Publish(ctx, p.cfg.Bus.Topic, payload); err != nil {
			return fmt.Errorf("failed to publish alert for transaction %d: %w", alert.TransactionID, err)
		}
		published++

		if p.dedup != nil {
			if err := p.dedup.Mark(ctx, alert.DedupKey(), ttl); err != nil {
				return fmt.Errorf("dedup mark failed: %w", err)
			}
		}
	}

	slog.Info("alerts published",
		"topic", p.cfg.Bus.Topic,
		"published", published,
		"deduplicated", skipped,
	)
	return nil
}

func alertsFromRows(runID string, rows []scoring.Row) []*domain.Alert {
	alerts := make([]*domain.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, &domain.Alert{
			RunID:            runID,
			TransactionID:    row.Tx.ID,
			AccountID:        row.Tx.AccountID,
			Date:             row.Tx.Date,
			Amount:           row.Tx.Amount,
			RiskScore:        row.Score,
			Signals:          row.Signals,
			MerchantCategory: row.Tx.MerchantCategory,
			Location:         row.Tx.Location,
			Channel:          row.Tx.Channel,
			International:    row.Tx.International,
		})
	}
	return alerts
}

func sortedIDs(scores map[int64]int) []int64 {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

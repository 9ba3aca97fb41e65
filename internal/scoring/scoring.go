// Package scoring aggregates pattern signals into a per-transaction
// risk score.
package scoring

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/patterns"
)

// Fixed signal weights. A single balance drain plus any other signal
// crosses the threshold; no low-weight signal does so alone.
const (
	WeightHighAmount      = 2
	WeightLocationAnomaly = 2
	WeightRiskyMerchant   = 1
	WeightBalanceDrain    = 3
	WeightRapidFire       = 1

	// FraudThreshold is the score at which a transaction is fraud
	// suspected.
	FraudThreshold = 4
)

// Signal names as they appear in alerts and persisted results.
const (
	SignalHighAmount      = "high_amount"
	SignalLocationAnomaly = "location_anomaly"
	SignalRiskyMerchant   = "risky_merchant"
	SignalBalanceDrain    = "balance_drain"
	SignalRapidFire       = "rapid_fire"
)

// ExtraSignal is a custom-rule firing that contributes additional
// weight on top of the five built-in patterns.
type ExtraSignal struct {
	ID     string
	Weight int
}

// Row is one fraud-suspected transaction in the final report.
type Row struct {
	Tx      *domain.Transaction
	Score   int
	Signals []string
}

// Result is the output of the scoring engine.
type Result struct {
	// Rows holds fraud-suspected transactions sorted descending by
	// score. Ties keep ledger order (stable sort, no secondary key).
	Rows []Row

	// Scores holds the risk score of every transaction.
	Scores map[int64]int

	// Suspected marks transactions with score >= FraudThreshold.
	Suspected map[int64]bool
}

// Score computes the weighted risk score for every transaction.
// extras may be nil; it carries custom-rule firings keyed by
// transaction ID. Scoring is pure: the same inputs always produce the
// same result.
func Score(table *dataset.Table, res *patterns.Results, extras map[int64][]ExtraSignal) *Result {
	out := &Result{
		Scores:    make(map[int64]int, table.Len()),
		Suspected: make(map[int64]bool),
	}

	for i := range table.Rows {
		tx := &table.Rows[i]

		score := 0
		var signals []string
		if res.HighAmount.Flagged[tx.ID] {
			score += WeightHighAmount
			signals = append(signals, SignalHighAmount)
		}
		if res.Location.Flagged[tx.ID] {
			score += WeightLocationAnomaly
			signals = append(signals, SignalLocationAnomaly)
		}
		if res.Merchant.RiskyTx[tx.ID] {
			score += WeightRiskyMerchant
			signals = append(signals, SignalRiskyMerchant)
		}
		if res.BalanceDrain.Flagged[tx.ID] {
			score += WeightBalanceDrain
			signals = append(signals, SignalBalanceDrain)
		}
		if res.RapidFire.Flagged[tx.ID] {
			score += WeightRapidFire
			signals = append(signals, SignalRapidFire)
		}

		for _, ex := range extras[tx.ID] {
			score += ex.Weight
			signals = append(signals, ex.ID)
		}

		out.Scores[tx.ID] = score
		if score >= FraudThreshold {
			out.Suspected[tx.ID] = true
			out.Rows = append(out.Rows, Row{Tx: tx, Score: score, Signals: signals})
		}
	}

	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i].Score > out.Rows[j].Score
	})

	return out
}

package patterns

import (
	"sort"
	"time"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

// LocationWindowHours is the travel window: two different locations
// within this many hours is treated as impossible travel.
const LocationWindowHours = 24.0

// LocationRow is one flagged transaction in the location report.
type LocationRow struct {
	Tx            *domain.Transaction
	PrevTime      time.Time
	PrevLocation  string
	TimeDiffHours float64
}

// LocationResult is the output of the location anomaly evaluator.
type LocationResult struct {
	// Rows holds flagged transactions sorted ascending by the travel
	// window, shortest (most suspicious) first.
	Rows []LocationRow

	// Flagged marks flagged transaction IDs for scoring.
	Flagged map[int64]bool

	// TimeDiff holds hours since the previous transaction for every
	// transaction that has a predecessor, exposed to custom rules.
	TimeDiff map[int64]float64
}

// EvaluateLocation compares each transaction's location with its
// account's immediately preceding transaction. The first transaction
// of an account has no predecessor and can never fire.
func EvaluateLocation(table *dataset.Table) *LocationResult {
	res := &LocationResult{
		Flagged:  make(map[int64]bool),
		TimeDiff: make(map[int64]float64),
	}

	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		var prev *domain.Transaction
		for _, tx := range txs {
			if prev != nil {
				hours := tx.Date.Sub(prev.Date).Hours()
				res.TimeDiff[tx.ID] = hours

				if tx.Location != prev.Location && hours <= LocationWindowHours {
					res.Flagged[tx.ID] = true
					res.Rows = append(res.Rows, LocationRow{
						Tx:            tx,
						PrevTime:      prev.Date,
						PrevLocation:  prev.Location,
						TimeDiffHours: hours,
					})
				}
			}
			prev = tx
		}
	})

	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].TimeDiffHours < res.Rows[j].TimeDiffHours
	})

	return res
}

package patterns

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

// RapidFireThreshold is the per-day transaction count at which an
// account's day is considered rapid-fire.
const RapidFireThreshold = 3

// DailyCountRow is one (account, day) group in the rapid-fire report.
type DailyCountRow struct {
	AccountID int64
	Day       string // calendar date, YYYY-MM-DD
	Count     int
}

// RapidFireResult is the output of the rapid-fire evaluator.
type RapidFireResult struct {
	// Groups holds qualifying (account, day) groups sorted descending
	// by count.
	Groups []DailyCountRow

	// Flagged marks every transaction belonging to a qualifying
	// group, not just the third and beyond.
	Flagged map[int64]bool

	// DailyCount holds the (account, day) group size of every
	// transaction, exposed to custom rules.
	DailyCount map[int64]int
}

// EvaluateRapidFire counts transactions per account per calendar day
// and flags groups with three or more.
func EvaluateRapidFire(table *dataset.Table) *RapidFireResult {
	res := &RapidFireResult{
		Flagged:    make(map[int64]bool),
		DailyCount: make(map[int64]int, table.Len()),
	}

	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		counts := make(map[string]int)
		for _, tx := range txs {
			counts[tx.Day()]++
		}

		for _, tx := range txs {
			n := counts[tx.Day()]
			res.DailyCount[tx.ID] = n
			if n >= RapidFireThreshold {
				res.Flagged[tx.ID] = true
			}
		}

		// Days appear in chronological order because the account's
		// transactions are time-sorted.
		seen := make(map[string]bool)
		for _, tx := range txs {
			day := tx.Day()
			if seen[day] {
				continue
			}
			seen[day] = true
			if counts[day] >= RapidFireThreshold {
				res.Groups = append(res.Groups, DailyCountRow{
					AccountID: accountID,
					Day:       day,
					Count:     counts[day],
				})
			}
		}
	})

	sort.SliceStable(res.Groups, func(i, j int) bool {
		return res.Groups[i].Count > res.Groups[j].Count
	})

	return res
}

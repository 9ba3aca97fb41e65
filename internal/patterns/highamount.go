package patterns

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

// HighAmountThreshold is the deviation ratio above which a debit is
// flagged.
const HighAmountThreshold = 3.0

// HighAmountRow is one flagged transaction in the high-amount report.
type HighAmountRow struct {
	Tx             *domain.Transaction
	AccountAvg     float64
	DeviationRatio float64
}

// HighAmountResult is the output of the high-amount debit evaluator.
type HighAmountResult struct {
	// Rows holds flagged transactions sorted descending by deviation
	// ratio.
	Rows []HighAmountRow

	// Flagged marks flagged transaction IDs for scoring.
	Flagged map[int64]bool

	// Deviation holds the deviation ratio of every transaction,
	// exposed to custom rules.
	Deviation map[int64]float64
}

// EvaluateHighAmount flags debits whose amount exceeds three times the
// account's mean amount. The mean includes the transaction itself, so
// a single-transaction account always has ratio 1 and can never fire.
func EvaluateHighAmount(table *dataset.Table) *HighAmountResult {
	res := &HighAmountResult{
		Flagged:   make(map[int64]bool),
		Deviation: make(map[int64]float64, table.Len()),
	}

	avgByAccount := make(map[int64]float64, table.AccountCount())
	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		var sum float64
		for _, tx := range txs {
			sum += tx.Amount
		}
		avgByAccount[accountID] = sum / float64(len(txs))
	})

	for i := range table.Rows {
		tx := &table.Rows[i]
		avg := avgByAccount[tx.AccountID]
		ratio := tx.Amount / avg
		res.Deviation[tx.ID] = ratio

		if tx.Type == domain.TxDebit && ratio > HighAmountThreshold {
			res.Flagged[tx.ID] = true
			res.Rows = append(res.Rows, HighAmountRow{
				Tx:             tx,
				AccountAvg:     avg,
				DeviationRatio: ratio,
			})
		}
	}

	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].DeviationRatio > res.Rows[j].DeviationRatio
	})

	return res
}

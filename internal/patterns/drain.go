package patterns

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

// BalanceDrainThreshold is the balance drop ratio at which a debit is
// flagged.
const BalanceDrainThreshold = 0.60

// BalanceDrainRow is one flagged transaction in the drain report.
type BalanceDrainRow struct {
	Tx          *domain.Transaction
	PrevBalance float64
	DropRatio   float64
}

// BalanceDrainResult is the output of the balance-drain evaluator.
type BalanceDrainResult struct {
	// Rows holds flagged transactions sorted descending by drop
	// ratio.
	Rows []BalanceDrainRow

	// Flagged marks flagged transaction IDs for scoring.
	Flagged map[int64]bool

	// DropRatio holds the balance drop ratio of every transaction,
	// exposed to custom rules. Transactions without a positive
	// previous balance carry 0.
	DropRatio map[int64]float64
}

// EvaluateBalanceDrain flags debits that erase 60% or more of the
// account balance as it stood before the transaction. A missing or
// non-positive previous balance means ratio 0, never an error.
func EvaluateBalanceDrain(table *dataset.Table) *BalanceDrainResult {
	res := &BalanceDrainResult{
		Flagged:   make(map[int64]bool),
		DropRatio: make(map[int64]float64, table.Len()),
	}

	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		var prev *domain.Transaction
		for _, tx := range txs {
			ratio := 0.0
			prevBalance := 0.0
			if prev != nil {
				prevBalance = prev.BalanceAfter
				if prevBalance > 0 {
					ratio = (prevBalance - tx.BalanceAfter) / prevBalance
				}
			}
			res.DropRatio[tx.ID] = ratio

			if tx.Type == domain.TxDebit && ratio >= BalanceDrainThreshold {
				res.Flagged[tx.ID] = true
				res.Rows = append(res.Rows, BalanceDrainRow{
					Tx:          tx,
					PrevBalance: prevBalance,
					DropRatio:   ratio,
				})
			}
			prev = tx
		}
	})

	sort.SliceStable(res.Rows, func(i, j int) bool {
		return res.Rows[i].DropRatio > res.Rows[j].DropRatio
	})

	return res
}

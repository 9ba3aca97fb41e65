package patterns

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

// RiskyRatioThreshold is the risky-transaction share at which an
// account is reported.
const RiskyRatioThreshold = 0.40

// RiskyCategories are merchant categories treated as high risk.
var RiskyCategories = map[string]bool{
	"gambling": true,
	"crypto":   true,
	"luxury":   true,
}

// MerchantRow is one reported account in the risky-merchant report.
// This evaluator works at account granularity, unlike the others.
type MerchantRow struct {
	AccountID int64
	Total     int
	Risky     int
	Ratio     float64
}

// MerchantResult is the output of the risky-merchant evaluator.
type MerchantResult struct {
	// Accounts holds qualifying accounts sorted descending by ratio.
	Accounts []MerchantRow

	// RiskyTx marks every transaction in a risky category. Scoring
	// consumes this per-transaction flag regardless of the account
	// ratio.
	RiskyTx map[int64]bool
}

// EvaluateMerchant flags risky-category transactions and reports
// accounts whose risky share reaches the threshold.
func EvaluateMerchant(table *dataset.Table) *MerchantResult {
	res := &MerchantResult{
		RiskyTx: make(map[int64]bool),
	}

	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		risky := 0
		for _, tx := range txs {
			if RiskyCategories[tx.MerchantCategory] {
				res.RiskyTx[tx.ID] = true
				risky++
			}
		}

		ratio := float64(risky) / float64(len(txs))
		if ratio >= RiskyRatioThreshold {
			res.Accounts = append(res.Accounts, MerchantRow{
				AccountID: accountID,
				Total:     len(txs),
				Risky:     risky,
				Ratio:     ratio,
			})
		}
	})

	sort.SliceStable(res.Accounts, func(i, j int) bool {
		return res.Accounts[i].Ratio > res.Accounts[j].Ratio
	})

	return res
}

// Package patterns implements the five rule-based fraud signals.
//
// Each evaluator is an independent pure pass over the immutable ledger
// table: it returns typed report rows plus a flag set keyed by
// transaction ID. No evaluator reads another evaluator's output; only
// the scoring engine consumes all five.
package patterns

import (
	"github.com/opensource-finance/kestrel/internal/dataset"
)

// Results bundles the output of all five evaluators.
type Results struct {
	HighAmount   *HighAmountResult
	RapidFire    *RapidFireResult
	Location     *LocationResult
	Merchant     *MerchantResult
	BalanceDrain *BalanceDrainResult
}

// EvaluateAll runs the five evaluators over the table.
func EvaluateAll(table *dataset.Table) *Results {
	return &Results{
		HighAmount:   EvaluateHighAmount(table),
		RapidFire:    EvaluateRapidFire(table),
		Location:     EvaluateLocation(table),
		Merchant:     EvaluateMerchant(table),
		BalanceDrain: EvaluateBalanceDrain(table),
	}
}

package patterns

import (
	"math"
	"testing"
	"time"
)

func TestMerchantFlagsRiskyTransactions(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), category("gambling")),
		mkTx(2, 100001, 100, at(time.Hour), category("crypto")),
		mkTx(3, 100001, 100, at(2*time.Hour), category("luxury")),
		mkTx(4, 100001, 100, at(3*time.Hour), category("groceries")),
	)

	res := EvaluateMerchant(table)

	for _, id := range []int64{1, 2, 3} {
		if !res.RiskyTx[id] {
			t.Errorf("expected transaction %d marked risky", id)
		}
	}
	if res.RiskyTx[4] {
		t.Error("groceries must not be risky")
	}
}

func TestMerchantAccountRatioThreshold(t *testing.T) {
	table := mkTable(
		// Account at exactly 0.40: 2 of 5 risky, reported.
		mkTx(1, 100001, 100, at(0), category("gambling")),
		mkTx(2, 100001, 100, at(time.Hour), category("crypto")),
		mkTx(3, 100001, 100, at(2*time.Hour)),
		mkTx(4, 100001, 100, at(3*time.Hour)),
		mkTx(5, 100001, 100, at(4*time.Hour)),
		// Account below: 1 of 3 risky, not reported.
		mkTx(6, 100002, 100, at(0), category("luxury")),
		mkTx(7, 100002, 100, at(time.Hour)),
		mkTx(8, 100002, 100, at(2*time.Hour)),
	)

	res := EvaluateMerchant(table)

	if len(res.Accounts) != 1 {
		t.Fatalf("expected 1 reported account, got %d", len(res.Accounts))
	}
	row := res.Accounts[0]
	if row.AccountID != 100001 {
		t.Errorf("expected account 100001, got %d", row.AccountID)
	}
	if row.Total != 5 || row.Risky != 2 {
		t.Errorf("expected 2 of 5 risky, got %d of %d", row.Risky, row.Total)
	}
	if math.Abs(row.Ratio-0.4) > 1e-9 {
		t.Errorf("expected ratio 0.4, got %v", row.Ratio)
	}
}

func TestMerchantAccountsSortedByRatioDesc(t *testing.T) {
	table := mkTable(
		mkTx(1, 100001, 100, at(0), category("gambling")),
		mkTx(2, 100001, 100, at(time.Hour)),
		mkTx(3, 100002, 100, at(0), category("crypto")),
	)

	res := EvaluateMerchant(table)

	if len(res.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(res.Accounts))
	}
	if res.Accounts[0].AccountID != 100002 {
		t.Errorf("expected the all-risky account first, got %d", res.Accounts[0].AccountID)
	}
}

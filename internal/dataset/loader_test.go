package dataset

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const validCSV = `transaction_id,account_id,transaction_date,transaction_type,amount,merchant_category,location,channel,is_international,balance_after
1,100002,2025-03-02 10:00:00,debit,250.00,groceries,Mumbai,POS,0,9750.00
2,100001,2025-03-01 09:30:00,credit,1000.00,travel,Delhi,Online,1,11000.00
3,100001,2025-03-01 08:00:00,debit,500.00,fuel,Delhi,ATM,0,10000.00
`

func TestParseValidCSV(t *testing.T) {
	table, err := Parse(strings.NewReader(validCSV))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 transactions, got %d", table.Len())
	}
	if table.AccountCount() != 2 {
		t.Fatalf("expected 2 accounts, got %d", table.AccountCount())
	}

	// Rows must come out sorted by (account, date): account 100001's
	// 08:00 debit first despite appearing last in the file.
	first := table.Rows[0]
	if first.ID != 3 {
		t.Errorf("expected transaction 3 first after sorting, got %d", first.ID)
	}
	if first.AccountID != 100001 {
		t.Errorf("expected account 100001 first, got %d", first.AccountID)
	}

	want := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	if !first.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, first.Date)
	}
	if first.Amount != 500.00 {
		t.Errorf("expected amount 500.00, got %v", first.Amount)
	}

	second := table.Rows[1]
	if second.ID != 2 {
		t.Errorf("expected transaction 2 second, got %d", second.ID)
	}
	if !second.International {
		t.Error("expected transaction 2 to be international")
	}
}

func TestParseColumnOrderIndependent(t *testing.T) {
	shuffled := `balance_after,transaction_id,account_id,amount,transaction_date,transaction_type,merchant_category,location,channel,is_international
9750.00,1,100002,250.00,2025-03-02 10:00:00,debit,groceries,Mumbai,POS,0
`
	table, err := Parse(strings.NewReader(shuffled))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Rows[0].BalanceAfter != 9750.00 {
		t.Errorf("expected balance 9750.00, got %v", table.Rows[0].BalanceAfter)
	}
}

func TestParseMissingColumn(t *testing.T) {
	csv := `transaction_id,account_id,transaction_date,transaction_type,amount,merchant_category,location,channel,is_international
1,100001,2025-03-01 08:00:00,debit,500.00,fuel,Delhi,ATM,0
`
	_, err := Parse(strings.NewReader(csv))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	if !strings.Contains(err.Error(), "balance_after") {
		t.Errorf("error should name the missing column, got: %v", err)
	}
}

func TestParseBadFields(t *testing.T) {
	header := "transaction_id,account_id,transaction_date,transaction_type,amount,merchant_category,location,channel,is_international,balance_after\n"

	cases := []struct {
		name string
		row  string
		want string
	}{
		{"bad amount", "1,100001,2025-03-01 08:00:00,debit,abc,fuel,Delhi,ATM,0,100.00", "amount"},
		{"negative amount", "1,100001,2025-03-01 08:00:00,debit,-5.00,fuel,Delhi,ATM,0,100.00", "amount"},
		{"bad date", "1,100001,not-a-date,debit,500.00,fuel,Delhi,ATM,0,100.00", "transaction_date"},
		{"bad type", "1,100001,2025-03-01 08:00:00,transfer,500.00,fuel,Delhi,ATM,0,100.00", "transaction_type"},
		{"bad intl flag", "1,100001,2025-03-01 08:00:00,debit,500.00,fuel,Delhi,ATM,maybe,100.00", "is_international"},
		{"bad id", "x,100001,2025-03-01 08:00:00,debit,500.00,fuel,Delhi,ATM,0,100.00", "transaction_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(header + tc.row + "\n"))
			if !errors.Is(err, ErrBadRecord) {
				t.Fatalf("expected ErrBadRecord, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error should mention %q, got: %v", tc.want, err)
			}
			if !strings.Contains(err.Error(), "row 2") {
				t.Errorf("error should carry the row number, got: %v", err)
			}
		})
	}
}

func TestParseEmptyTable(t *testing.T) {
	csv := "transaction_id,account_id,transaction_date,transaction_type,amount,merchant_category,location,channel,is_international,balance_after\n"
	table, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d rows", table.Len())
	}
}

package dataset

import (
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func tx(id, account int64, at time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		AccountID: account,
		Date:      at,
		Type:      domain.TxDebit,
		Amount:    100,
	}
}

func TestNewTableSortsByAccountAndDate(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	table := NewTable([]domain.Transaction{
		tx(1, 200, base),
		tx(2, 100, base.Add(2*time.Hour)),
		tx(3, 100, base),
	})

	wantOrder := []int64{3, 2, 1}
	for i, want := range wantOrder {
		if table.Rows[i].ID != want {
			t.Errorf("position %d: expected transaction %d, got %d", i, want, table.Rows[i].ID)
		}
	}

	accounts := table.Accounts()
	if len(accounts) != 2 || accounts[0] != 100 || accounts[1] != 200 {
		t.Errorf("expected accounts [100 200], got %v", accounts)
	}
}

func TestNewTableStableOnEqualTimestamps(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	table := NewTable([]domain.Transaction{
		tx(7, 100, base),
		tx(8, 100, base),
		tx(9, 100, base),
	})

	for i, want := range []int64{7, 8, 9} {
		if table.Rows[i].ID != want {
			t.Errorf("position %d: expected %d, got %d (sort must be stable)", i, want, table.Rows[i].ID)
		}
	}
}

func TestEachAccountVisitsAscending(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	table := NewTable([]domain.Transaction{
		tx(1, 300, base),
		tx(2, 100, base),
		tx(3, 200, base),
	})

	var visited []int64
	table.EachAccount(func(accountID int64, txs []*domain.Transaction) {
		visited = append(visited, accountID)
		if len(txs) != 1 {
			t.Errorf("account %d: expected 1 transaction, got %d", accountID, len(txs))
		}
	})

	want := []int64{100, 200, 300}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("expected visit order %v, got %v", want, visited)
		}
	}
}

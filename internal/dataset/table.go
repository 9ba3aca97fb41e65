// Package dataset provides ledger loading, grouping and synthesis.
package dataset

import (
	"sort"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Table is the fully-loaded transaction ledger. Rows are sorted by
// (account_id, transaction_date) at construction; every pattern
// evaluator depends on that ordering for previous-transaction lookups.
type Table struct {
	Rows []domain.Transaction

	accounts []int64
	byAcct   map[int64][]*domain.Transaction
}

// NewTable builds a Table from rows, sorting them by account and
// timestamp. The sort is stable so equal timestamps keep input order.
func NewTable(rows []domain.Transaction) *Table {
	t := &Table{Rows: rows}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		a, b := &t.Rows[i], &t.Rows[j]
		if a.AccountID != b.AccountID {
			return a.AccountID < b.AccountID
		}
		return a.Date.Before(b.Date)
	})

	t.byAcct = make(map[int64][]*domain.Transaction)
	for i := range t.Rows {
		tx := &t.Rows[i]
		if _, ok := t.byAcct[tx.AccountID]; !ok {
			t.accounts = append(t.accounts, tx.AccountID)
		}
		t.byAcct[tx.AccountID] = append(t.byAcct[tx.AccountID], tx)
	}

	return t
}

// Len returns the number of transactions.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Accounts returns account IDs in ascending order.
func (t *Table) Accounts() []int64 {
	return t.accounts
}

// Account returns the time-ordered transactions of one account.
func (t *Table) Account(accountID int64) []*domain.Transaction {
	return t.byAcct[accountID]
}

// AccountCount returns the number of distinct accounts.
func (t *Table) AccountCount() int {
	return len(t.accounts)
}

// EachAccount calls fn for every account in ascending account order,
// passing the account's time-ordered transactions.
func (t *Table) EachAccount(fn func(accountID int64, txs []*domain.Transaction)) {
	for _, id := range t.accounts {
		fn(id, t.byAcct[id])
	}
}

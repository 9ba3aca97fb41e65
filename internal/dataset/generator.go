package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// GeneratorConfig controls synthetic ledger generation.
type GeneratorConfig struct {
	Transactions int
	Accounts     int
	Days         int // trailing window length
	Seed         int64
	End          time.Time // zero value means now
}

// DefaultGeneratorConfig matches the reference dataset shape.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Transactions: 12000,
		Accounts:     400,
		Days:         270,
		Seed:         42,
	}
}

var merchantCategories = []weighted{
	{"groceries", 0.30},
	{"fuel", 0.20},
	{"electronics", 0.15},
	{"gambling", 0.05},
	{"crypto", 0.05},
	{"travel", 0.15},
	{"luxury", 0.10},
}

var channels = []weighted{
	{"ATM", 0.25},
	{"Online", 0.45},
	{"POS", 0.30},
}

var cities = []string{"Ahmedabad", "Mumbai", "Delhi", "Bangalore", "Pune"}

type weighted struct {
	value  string
	weight float64
}

// Generate produces a synthetic ledger with the same statistical shape
// as real retail banking activity: mostly small debits with an
// exponential amount tail, a small international fraction carrying
// inflated amounts, and per-account balances where a debit exceeding
// the balance is dropped by the bank (balance unchanged).
func Generate(cfg GeneratorConfig) *Table {
	if cfg.Transactions <= 0 {
		cfg.Transactions = 12000
	}
	if cfg.Accounts <= 0 {
		cfg.Accounts = 400
	}
	if cfg.Days <= 0 {
		cfg.Days = 270
	}
	end := cfg.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := end.AddDate(0, 0, -cfg.Days)

	rng := rand.New(rand.NewSource(cfg.Seed))

	rows := make([]domain.Transaction, 0, cfg.Transactions)
	for i := 0; i < cfg.Transactions; i++ {
		tx := domain.Transaction{
			ID:        int64(i + 1),
			AccountID: 100001 + int64(rng.Intn(cfg.Accounts)),
			Date:      randTime(rng, start, end),
		}

		if rng.Float64() < 0.7 {
			tx.Type = domain.TxDebit
		} else {
			tx.Type = domain.TxCredit
		}

		amount := rng.ExpFloat64() * 2000
		if amount < 50 {
			amount = 50
		}

		tx.International = rng.Float64() < 0.08
		if tx.International {
			// International transactions run higher value.
			amount *= 1.5 + rng.Float64()*1.5
		}
		tx.Amount = round2(amount)

		tx.MerchantCategory = pickWeighted(rng, merchantCategories)
		tx.Location = cities[rng.Intn(len(cities))]
		tx.Channel = pickWeighted(rng, channels)

		rows = append(rows, tx)
	}

	table := NewTable(rows)
	simulateBalances(rng, table)
	return table
}

// simulateBalances walks each account in ledger order carrying a
// running balance. Insufficient-funds debits leave the balance
// untouched, mirroring a declined withdrawal.
func simulateBalances(rng *rand.Rand, table *Table) {
	table.EachAccount(func(_ int64, txs []*domain.Transaction) {
		balance := float64(20000 + rng.Intn(80000))
		for _, tx := range txs {
			switch tx.Type {
			case domain.TxDebit:
				if balance >= tx.Amount {
					balance -= tx.Amount
				}
			case domain.TxCredit:
				balance += tx.Amount
			}
			tx.BalanceAfter = round2(balance)
		}
	})
}

// WriteCSV serializes a table in the analyzer's input format.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(requiredColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range table.Rows {
		tx := &table.Rows[i]
		intl := "0"
		if tx.International {
			intl = "1"
		}
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			strconv.FormatInt(tx.AccountID, 10),
			tx.Date.Format("2006-01-02 15:04:05"),
			string(tx.Type),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.MerchantCategory,
			tx.Location,
			tx.Channel,
			intl,
			strconv.FormatFloat(tx.BalanceAfter, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func randTime(rng *rand.Rand, start, end time.Time) time.Time {
	span := end.Unix() - start.Unix()
	if span <= 0 {
		return start
	}
	return time.Unix(start.Unix()+rng.Int63n(span), 0).UTC()
}

func pickWeighted(rng *rand.Rand, choices []weighted) string {
	r := rng.Float64()
	acc := 0.0
	for _, c := range choices {
		acc += c.weight
		if r < acc {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

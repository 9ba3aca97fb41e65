// Package report serializes analysis results to CSV report files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/opensource-finance/kestrel/internal/patterns"
	"github.com/opensource-finance/kestrel/internal/scoring"
)

// Report file names, one per pattern plus the combined report.
const (
	FileHighAmount   = "high_amount_alerts.csv"
	FileRapidFire    = "rapid_transactions_accounts.csv"
	FileLocation     = "location_mismatch_accounts.csv"
	FileMerchant     = "risky_merchant_account.csv"
	FileBalanceDrain = "balance_drain_cases.csv"
	FileFraudRisk    = "fraud_risk_report.csv"
)

const timeLayout = "2006-01-02 15:04:05"

// Writer emits report CSVs into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteAll emits the five pattern reports and the combined fraud
// report. The first write failure aborts; already-written reports are
// left intact but the run counts as failed.
func (w *Writer) WriteAll(res *patterns.Results, sc *scoring.Result) error {
	steps := []func() error{
		func() error { return w.WriteHighAmount(res.HighAmount) },
		func() error { return w.WriteRapidFire(res.RapidFire) },
		func() error { return w.WriteLocation(res.Location) },
		func() error { return w.WriteMerchant(res.Merchant) },
		func() error { return w.WriteBalanceDrain(res.BalanceDrain) },
		func() error { return w.WriteFraudRisk(sc) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// WriteHighAmount emits the high-amount debit report.
func (w *Writer) WriteHighAmount(res *patterns.HighAmountResult) error {
	header := []string{
		"transaction_id", "account_id", "transaction_date", "amount",
		"account_avg_amount", "deviation_ratio", "merchant_category",
		"location", "channel", "is_international",
	}
	records := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		records = append(records, []string{
			formatInt(row.Tx.ID),
			formatInt(row.Tx.AccountID),
			formatTime(row.Tx.Date),
			formatMoney(row.Tx.Amount),
			formatRatio(row.AccountAvg),
			formatRatio(row.DeviationRatio),
			row.Tx.MerchantCategory,
			row.Tx.Location,
			row.Tx.Channel,
			formatBool(row.Tx.International),
		})
	}
	return w.writeFile(FileHighAmount, header, records)
}

// WriteRapidFire emits the (account, day) rapid-fire summary.
func (w *Writer) WriteRapidFire(res *patterns.RapidFireResult) error {
	header := []string{"account_id", "transaction_day", "transaction_count"}
	records := make([][]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		records = append(records, []string{
			formatInt(g.AccountID),
			g.Day,
			strconv.Itoa(g.Count),
		})
	}
	return w.writeFile(FileRapidFire, header, records)
}

// WriteLocation emits the impossible-travel report.
func (w *Writer) WriteLocation(res *patterns.LocationResult) error {
	header := []string{
		"transaction_id", "account_id", "transaction_date",
		"prev_transaction_time", "location", "prev_location",
		"time_diff_hours", "amount", "channel", "is_international",
	}
	records := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		records = append(records, []string{
			formatInt(row.Tx.ID),
			formatInt(row.Tx.AccountID),
			formatTime(row.Tx.Date),
			formatTime(row.PrevTime),
			row.Tx.Location,
			row.PrevLocation,
			formatRatio(row.TimeDiffHours),
			formatMoney(row.Tx.Amount),
			row.Tx.Channel,
			formatBool(row.Tx.International),
		})
	}
	return w.writeFile(FileLocation, header, records)
}

// WriteMerchant emits the per-account risky merchant report.
func (w *Writer) WriteMerchant(res *patterns.MerchantResult) error {
	header := []string{
		"account_id", "total_transactions", "risky_transactions",
		"risky_transaction_ratio",
	}
	records := make([][]string, 0, len(res.Accounts))
	for _, row := range res.Accounts {
		records = append(records, []string{
			formatInt(row.AccountID),
			strconv.Itoa(row.Total),
			strconv.Itoa(row.Risky),
			formatRatio(row.Ratio),
		})
	}
	return w.writeFile(FileMerchant, header, records)
}

// WriteBalanceDrain emits the balance-drain report.
func (w *Writer) WriteBalanceDrain(res *patterns.BalanceDrainResult) error {
	header := []string{
		"transaction_id", "account_id", "transaction_date", "prev_balance",
		"balance_after", "balance_drop_ratio", "amount", "channel",
		"location", "is_international",
	}
	records := make([][]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		records = append(records, []string{
			formatInt(row.Tx.ID),
			formatInt(row.Tx.AccountID),
			formatTime(row.Tx.Date),
			formatMoney(row.PrevBalance),
			formatMoney(row.Tx.BalanceAfter),
			formatRatio(row.DropRatio),
			formatMoney(row.Tx.Amount),
			row.Tx.Channel,
			row.Tx.Location,
			formatBool(row.Tx.International),
		})
	}
	return w.writeFile(FileBalanceDrain, header, records)
}

// WriteFraudRisk emits the combined fraud report.
func (w *Writer) WriteFraudRisk(sc *scoring.Result) error {
	header := []string{
		"transaction_id", "account_id", "transaction_date", "amount",
		"risk_score", "merchant_category", "location", "channel",
		"is_international",
	}
	records := make([][]string, 0, len(sc.Rows))
	for _, row := range sc.Rows {
		records = append(records, []string{
			formatInt(row.Tx.ID),
			formatInt(row.Tx.AccountID),
			formatTime(row.Tx.Date),
			formatMoney(row.Tx.Amount),
			strconv.Itoa(row.Score),
			row.Tx.MerchantCategory,
			row.Tx.Location,
			row.Tx.Channel,
			formatBool(row.Tx.International),
		})
	}
	return w.writeFile(FileFraudRisk, header, records)
}

// Path returns the full path of a report file.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

func (w *Writer) writeFile(name string, header []string, records [][]string) error {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report %s: %w", name, err)
	}
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report %s: %w", name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report %s: %w", name, err)
	}
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// formatMoney keeps the two-decimal convention of the input ledger.
func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatRatio uses the shortest representation that round-trips.
func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

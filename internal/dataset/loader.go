package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var (
	// ErrMissingColumn means the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrBadRecord means a data row could not be parsed. The run is
	// aborted before any report is written.
	ErrBadRecord = errors.New("bad record")
)

// requiredColumns is the input contract. Order in the file does not
// matter; the header is mapped by name.
var requiredColumns = []string{
	"transaction_id",
	"account_id",
	"transaction_date",
	"transaction_type",
	"amount",
	"merchant_category",
	"location",
	"channel",
	"is_international",
	"balance_after",
}

// dateLayouts are accepted transaction_date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Load reads and validates a transactions CSV from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse reads a transactions CSV. Any malformed field fails the whole
// load with the offending row and column identified.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []domain.Transaction
	rowNum := 1 // header was row 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadRecord, rowNum, err)
		}

		tx, err := parseRecord(record, colIndex)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadRecord, rowNum, err)
		}
		rows = append(rows, tx)
	}

	return NewTable(rows), nil
}

func parseRecord(record []string, colIndex map[string]int) (domain.Transaction, error) {
	var tx domain.Transaction

	field := func(name string) string {
		return strings.TrimSpace(record[colIndex[name]])
	}

	id, err := strconv.ParseInt(field("transaction_id"), 10, 64)
	if err != nil {
		return tx, fmt.Errorf("transaction_id: %v", err)
	}
	tx.ID = id

	acct, err := strconv.ParseInt(field("account_id"), 10, 64)
	if err != nil {
		return tx, fmt.Errorf("account_id: %v", err)
	}
	tx.AccountID = acct

	date, err := parseDate(field("transaction_date"))
	if err != nil {
		return tx, fmt.Errorf("transaction_date: %v", err)
	}
	tx.Date = date

	txType, err := domain.ParseTxType(field("transaction_type"))
	if err != nil {
		return tx, fmt.Errorf("transaction_type: %v", err)
	}
	tx.Type = txType

	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return tx, fmt.Errorf("amount: %v", err)
	}
	if amount < 0 {
		return tx, fmt.Errorf("amount: negative value %v", amount)
	}
	tx.Amount = amount

	tx.MerchantCategory = field("merchant_category")
	tx.Location = field("location")
	tx.Channel = field("channel")

	intl, err := strconv.ParseBool(field("is_international"))
	if err != nil {
		return tx, fmt.Errorf("is_international: %v", err)
	}
	tx.International = intl

	balance, err := strconv.ParseFloat(field("balance_after"), 64)
	if err != nil {
		return tx, fmt.Errorf("balance_after: %v", err)
	}
	tx.BalanceAfter = balance

	return tx, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

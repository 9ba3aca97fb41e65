// Package domain defines the core types and interfaces for Kestrel.
package domain

import (
	"fmt"
	"time"
)

// TxType is the direction of a transaction.
type TxType string

const (
	TxDebit  TxType = "debit"
	TxCredit TxType = "credit"
)

// ParseTxType validates a transaction_type field value.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TxDebit, TxCredit:
		return TxType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one row of the input ledger.
type Transaction struct {
	ID               int64     `json:"transactionId"`
	AccountID        int64     `json:"accountId"`
	Date             time.Time `json:"transactionDate"`
	Type             TxType    `json:"transactionType"`
	Amount           float64   `json:"amount"`
	MerchantCategory string    `json:"merchantCategory"`
	Location         string    `json:"location"`
	Channel          string    `json:"channel"`
	International    bool      `json:"isInternational"`
	BalanceAfter     float64   `json:"balanceAfter"`
}

// Day returns the calendar date of the transaction, used for
// rapid-fire grouping.
func (t *Transaction) Day() string {
	return t.Date.Format("2006-01-02")
}

// Alert is a fraud-suspected transaction as published to sinks
// (repository, event bus). It mirrors a row of the final fraud report.
type Alert struct {
	RunID            string    `json:"runId"`
	TransactionID    int64     `json:"transactionId"`
	AccountID        int64     `json:"accountId"`
	Date             time.Time `json:"transactionDate"`
	Amount           float64   `json:"amount"`
	RiskScore        int       `json:"riskScore"`
	Signals          []string  `json:"signals"`
	MerchantCategory string    `json:"merchantCategory"`
	Location         string    `json:"location"`
	Channel          string    `json:"channel"`
	International    bool      `json:"isInternational"`
}

// DedupKey identifies an alert across runs over overlapping ledgers.
func (a *Alert) DedupKey() string {
	return fmt.Sprintf("alert:%d", a.TransactionID)
}

// Run is the summary record of one batch analysis.
type Run struct {
	ID            string    `json:"id"`
	InputPath     string    `json:"inputPath"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Transactions  int       `json:"transactions"`
	Accounts      int       `json:"accounts"`
	FraudFlagged  int       `json:"fraudFlagged"`
	EngineVersion string    `json:"engineVersion"`
}

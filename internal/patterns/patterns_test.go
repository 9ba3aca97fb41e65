package patterns

import (
	"time"

	"github.com/opensource-finance/kestrel/internal/dataset"
	"github.com/opensource-finance/kestrel/internal/domain"
)

var testBase = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

type txOpt func(*domain.Transaction)

func at(d time.Duration) txOpt {
	return func(tx *domain.Transaction) { tx.Date = testBase.Add(d) }
}

func credit() txOpt {
	return func(tx *domain.Transaction) { tx.Type = domain.TxCredit }
}

func in(location string) txOpt {
	return func(tx *domain.Transaction) { tx.Location = location }
}

func category(c string) txOpt {
	return func(tx *domain.Transaction) { tx.MerchantCategory = c }
}

func balance(b float64) txOpt {
	return func(tx *domain.Transaction) { tx.BalanceAfter = b }
}

func mkTx(id, account int64, amount float64, opts ...txOpt) domain.Transaction {
	tx := domain.Transaction{
		ID:               id,
		AccountID:        account,
		Date:             testBase,
		Type:             domain.TxDebit,
		Amount:           amount,
		MerchantCategory: "groceries",
		Location:         "Mumbai",
		Channel:          "POS",
	}
	for _, opt := range opts {
		opt(&tx)
	}
	return tx
}

func mkTable(txs ...domain.Transaction) *dataset.Table {
	return dataset.NewTable(txs)
}

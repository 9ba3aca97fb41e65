package repository

// Schema definitions for Kestrel run history.
// Compatible with both SQLite and PostgreSQL.

const schemaRuns = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    input_path TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    transactions INTEGER NOT NULL,
    accounts INTEGER NOT NULL,
    fraud_flagged INTEGER NOT NULL,
    engine_version TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS fraud_alerts (
    run_id TEXT NOT NULL,
    transaction_id BIGINT NOT NULL,
    account_id BIGINT NOT NULL,
    transaction_date TIMESTAMP NOT NULL,
    amount REAL NOT NULL,
    risk_score INTEGER NOT NULL,
    signals TEXT NOT NULL,
    merchant_category TEXT NOT NULL,
    location TEXT NOT NULL,
    channel TEXT NOT NULL,
    is_international INTEGER NOT NULL,
    PRIMARY KEY (run_id, transaction_id)
);

CREATE INDEX IF NOT EXISTS idx_fraud_alerts_account ON fraud_alerts(account_id);
`

// AllSchemas returns the schema statements in creation order.
func AllSchemas() []string {
	return []string{schemaRuns, schemaAlerts}
}

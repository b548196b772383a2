package optimizer

import "database/sql"

// OptimizationRunsSchema keeps a history of optimization runs for auditing
// and reproducibility checks.
const OptimizationRunsSchema = `
CREATE TABLE IF NOT EXISTS optimization_runs (
    id TEXT PRIMARY KEY,
    pod_id TEXT NOT NULL,
    electricity_price REAL NOT NULL,
    feed_in_tariff REAL NOT NULL,
    budget REAL,
    max_shares_per_project INTEGER NOT NULL,
    total_investment REAL NOT NULL,
    annual_savings REAL NOT NULL,
    recommendations_count INTEGER NOT NULL,
    result_json TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_optimization_runs_pod ON optimization_runs(pod_id);
CREATE INDEX IF NOT EXISTS idx_optimization_runs_created ON optimization_runs(created_at);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(OptimizationRunsSchema)
	return err
}

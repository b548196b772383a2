package portfolio

import "github.com/delphienergy/sunshare/internal/database"

// PortfolioSchema holds the user and share transaction tables.
const PortfolioSchema = `
CREATE TABLE IF NOT EXISTS portfolio_users (
    user_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    pod_id TEXT NOT NULL DEFAULT '',
    registration_date TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS share_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    project_name TEXT NOT NULL DEFAULT '',
    energy_type TEXT NOT NULL,
    direction TEXT NOT NULL CHECK (direction IN ('buy', 'sell')),
    shares INTEGER NOT NULL CHECK (shares > 0),
    price_per_share REAL NOT NULL,
    current_value_per_share REAL NOT NULL,
    capacity_per_share REAL NOT NULL DEFAULT 0,
    capacity_unit TEXT NOT NULL DEFAULT 'kW',
    executed_at TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (user_id) REFERENCES portfolio_users(user_id)
);

CREATE INDEX IF NOT EXISTS idx_share_transactions_user ON share_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_share_transactions_user_project ON share_transactions(user_id, project_id);
CREATE INDEX IF NOT EXISTS idx_share_transactions_executed ON share_transactions(executed_at);
`

// InitSchema creates the portfolio tables.
func InitSchema(db *database.DB) error {
	_, err := db.Exec(PortfolioSchema)
	return err
}

package portfolio

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/database"
	"github.com/delphienergy/sunshare/internal/domain"
)

// Repository persists users and share transactions.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a portfolio repository.
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// GetUser returns a user by ID.
func (r *Repository) GetUser(userID string) (User, error) {
	var u User
	err := r.db.QueryRow(`
		SELECT user_id, name, pod_id, registration_date
		FROM portfolio_users
		WHERE user_id = ?`, userID).
		Scan(&u.UserID, &u.Name, &u.PodID, &u.RegistrationDate)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a user, replacing an existing record with the same ID.
func (r *Repository) CreateUser(u User) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO portfolio_users (user_id, name, pod_id, registration_date)
		VALUES (?, ?, ?, ?)`,
		u.UserID, u.Name, u.PodID, u.RegistrationDate)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateTransaction records a share transaction and returns its ID.
func (r *Repository) CreateTransaction(tx Transaction) (int, error) {
	res, err := r.db.Exec(`
		INSERT INTO share_transactions (
			user_id, project_id, project_name, energy_type, direction,
			shares, price_per_share, current_value_per_share,
			capacity_per_share, capacity_unit, executed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.ProjectID, tx.ProjectName, string(tx.EnergyType), tx.Direction,
		tx.Shares, tx.PricePerShare, tx.CurrentValuePerShare,
		tx.CapacityPerShare, tx.CapacityUnit, tx.ExecutedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}
	return int(id), nil
}

// ListTransactions returns all transactions for a user in execution order.
// Insertion order breaks ties on the same day, so replaying the list always
// yields the same positions.
func (r *Repository) ListTransactions(userID string) ([]Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, project_id, project_name, energy_type, direction,
		       shares, price_per_share, current_value_per_share,
		       capacity_per_share, capacity_unit, executed_at, created_at
		FROM share_transactions
		WHERE user_id = ?
		ORDER BY executed_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var tx Transaction
		var energy string
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.ProjectID, &tx.ProjectName, &energy, &tx.Direction,
			&tx.Shares, &tx.PricePerShare, &tx.CurrentValuePerShare,
			&tx.CapacityPerShare, &tx.CapacityUnit, &tx.ExecutedAt, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.EnergyType = domain.EnergyType(energy)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

package optimizer

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
)

// Run is one persisted optimization run summary.
type Run struct {
	ID                   string   `json:"id"`
	PodID                string   `json:"pod_id"`
	ElectricityPrice     float64  `json:"electricity_price"`
	FeedInTariff         float64  `json:"feed_in_tariff"`
	Budget               *float64 `json:"budget"`
	MaxSharesPerProject  int      `json:"max_shares_per_project"`
	TotalInvestment      float64  `json:"total_investment"`
	AnnualSavings        float64  `json:"annual_savings"`
	RecommendationsCount int      `json:"recommendations_count"`
	CreatedAt            string   `json:"created_at"`
}

// RunRepository persists optimization run history
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("repo", "optimization_runs").Logger(),
	}
}

// Create inserts a run summary with its full result payload.
func (r *RunRepository) Create(runID string, req Request, result *Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO optimization_runs (
			id, pod_id, electricity_price, feed_in_tariff, budget,
			max_shares_per_project, total_investment, annual_savings,
			recommendations_count, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var budget interface{}
	if req.Budget != nil {
		budget = *req.Budget
	}

	_, err = r.db.Exec(
		query,
		runID,
		req.PodID,
		req.ElectricityPrice,
		req.FeedInTariff,
		budget,
		req.MaxSharesPerProject,
		result.TotalInvestment,
		result.AnnualSavings,
		len(result.Recommendations),
		string(payload),
		time.Now().UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert optimization run: %w", err)
	}

	return nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, pod_id, electricity_price, feed_in_tariff, budget,
		       max_shares_per_project, total_investment, annual_savings,
		       recommendations_count, created_at
		FROM optimization_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var budget sql.NullFloat64
		if err := rows.Scan(
			&run.ID,
			&run.PodID,
			&run.ElectricityPrice,
			&run.FeedInTariff,
			&budget,
			&run.MaxSharesPerProject,
			&run.TotalInvestment,
			&run.AnnualSavings,
			&run.RecommendationsCount,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		if budget.Valid {
			v := budget.Float64
			run.Budget = &v
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating optimization runs: %w", err)
	}

	return runs, nil
}

// GetResult returns the stored result payload of one run.
func (r *RunRepository) GetResult(runID string) (*Result, error) {
	var payload string
	err := r.db.QueryRow(
		"SELECT result_json FROM optimization_runs WHERE id = ?", runID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("optimization run %s: %w", runID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization run: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
	}
	return &result, nil
}

package optimizer

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphienergy/sunshare/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	err = InitSchema(db)
	require.NoError(t, err)

	return db
}

func sampleResult() *Result {
	payback := 5.5
	return &Result{
		Recommendations: []Recommendation{
			{ProjectID: "solar-1", RecommendedShares: 3, InvestmentAmount: 1500},
		},
		TotalInvestment:    1500,
		AnnualSavings:      272.73,
		PaybackPeriodYears: &payback,
	}
}

func TestRunCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db, zerolog.Nop())

	req := baseRequest()
	req.Budget = floatPtr(5000)
	require.NoError(t, repo.Create("run-1", req, sampleResult()))

	req2 := baseRequest()
	require.NoError(t, repo.Create("run-2", req2, sampleResult()))

	runs, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first; same created_at second resolves by descending ID
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Nil(t, runs[0].Budget)
	assert.Equal(t, "run-1", runs[1].ID)
	require.NotNil(t, runs[1].Budget)
	assert.Equal(t, 5000.0, *runs[1].Budget)

	assert.Equal(t, "POD1", runs[0].PodID)
	assert.Equal(t, 1500.0, runs[0].TotalInvestment)
	assert.Equal(t, 1, runs[0].RecommendationsCount)
}

func TestRunListLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db, zerolog.Nop())
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(id, baseRequest(), sampleResult()))
	}

	runs, err := repo.List(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// Non-positive limit falls back to the default
	runs, err = repo.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRunGetResult(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRunRepository(db, zerolog.Nop())
	stored := sampleResult()
	require.NoError(t, repo.Create("run-1", baseRequest(), stored))

	got, err := repo.GetResult("run-1")
	require.NoError(t, err)
	assert.Equal(t, stored.TotalInvestment, got.TotalInvestment)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "solar-1", got.Recommendations[0].ProjectID)
	require.NotNil(t, got.PaybackPeriodYears)
	assert.Equal(t, 5.5, *got.PaybackPeriodYears)

	_, err = repo.GetResult("missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

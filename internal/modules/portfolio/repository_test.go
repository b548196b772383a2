package portfolio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphienergy/sunshare/internal/database"
	"github.com/delphienergy/sunshare/internal/domain"
)

func setupTestDB(t *testing.T) *database.DB {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))
	return db
}

func TestUserRoundTrip(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.GetUser("u1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.CreateUser(User{
		UserID:           "u1",
		Name:             "Test User",
		PodID:            "POD1",
		RegistrationDate: "2023-01-01",
	}))

	u, err := repo.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "Test User", u.Name)
	assert.Equal(t, "POD1", u.PodID)

	// Same ID replaces
	require.NoError(t, repo.CreateUser(User{UserID: "u1", Name: "Renamed"}))
	u, err = repo.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Name)
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.CreateUser(User{UserID: "u1", Name: "Test User"}))

	id, err := repo.CreateTransaction(Transaction{
		UserID:               "u1",
		ProjectID:            "solar-1",
		ProjectName:          "Solar One",
		EnergyType:           domain.EnergySolar,
		Direction:            "buy",
		Shares:               5,
		PricePerShare:        500,
		CurrentValuePerShare: 520,
		CapacityPerShare:     0.5,
		CapacityUnit:         "kW",
		ExecutedAt:           "2023-03-01",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	txs, err := repo.ListTransactions("u1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "solar-1", txs[0].ProjectID)
	assert.Equal(t, domain.EnergySolar, txs[0].EnergyType)
	assert.Equal(t, 5, txs[0].Shares)
	assert.False(t, txs[0].CreatedAt.IsZero())
}

func TestListTransactionsOrdered(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.CreateUser(User{UserID: "u1", Name: "Test User"}))

	base := Transaction{
		UserID: "u1", ProjectID: "solar-1", EnergyType: domain.EnergySolar,
		Direction: "buy", Shares: 1, PricePerShare: 500, CurrentValuePerShare: 500,
	}

	later := base
	later.ExecutedAt = "2023-06-01"
	_, err := repo.CreateTransaction(later)
	require.NoError(t, err)

	earlier := base
	earlier.ExecutedAt = "2023-01-01"
	_, err = repo.CreateTransaction(earlier)
	require.NoError(t, err)

	sameDay := base
	sameDay.ExecutedAt = "2023-06-01"
	sameDay.Direction = "sell"
	_, err = repo.CreateTransaction(sameDay)
	require.NoError(t, err)

	txs, err := repo.ListTransactions("u1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "2023-01-01", txs[0].ExecutedAt)
	assert.Equal(t, "2023-06-01", txs[1].ExecutedAt)
	assert.Equal(t, "buy", txs[1].Direction)
	// Same-day tie resolved by insertion order
	assert.Equal(t, "sell", txs[2].Direction)
}

func TestCreateTransactionConstraints(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	require.NoError(t, repo.CreateUser(User{UserID: "u1", Name: "Test User"}))

	_, err := repo.CreateTransaction(Transaction{
		UserID: "u1", ProjectID: "solar-1", EnergyType: domain.EnergySolar,
		Direction: "hold", Shares: 1, ExecutedAt: "2023-01-01",
	})
	assert.Error(t, err, "direction outside buy/sell must violate the check constraint")

	_, err = repo.CreateTransaction(Transaction{
		UserID: "u1", ProjectID: "solar-1", EnergyType: domain.EnergySolar,
		Direction: "buy", Shares: 0, ExecutedAt: "2023-01-01",
	})
	assert.Error(t, err, "zero shares must violate the check constraint")
}

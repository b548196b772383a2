package portfolio

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

type catalogStub struct {
	projects map[string]projects.Project
}

func (c *catalogStub) Get(id string) (projects.Project, error) {
	p, ok := c.projects[id]
	if !ok {
		return projects.Project{}, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	cp := p
	cp.Production = p.Production.Clone()
	return cp, nil
}

type profileStub struct {
	profiles map[string]timeseries.Series
}

func (p *profileStub) LoadProfile(pod string) (timeseries.Series, error) {
	s, ok := p.profiles[pod]
	if !ok {
		return nil, fmt.Errorf("load curve for POD %s: %w", pod, domain.ErrNotFound)
	}
	return s, nil
}

// flatDays builds consecutive days of 15-minute samples at a constant kW.
func flatDays(start string, days int, kw float64) timeseries.Series {
	t, _ := time.Parse("2006-01-02", start)
	n := days * 96
	s := make(timeseries.Series, n)
	for i := 0; i < n; i++ {
		s[i] = timeseries.Sample{Timestamp: t.Add(time.Duration(i) * 15 * time.Minute), Value: kw}
	}
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultElectricityPrice: 0.30,
		DefaultFeedInTariff:     0.05,
		Assumptions: config.Assumptions{
			BatteryDailyCycles:         1,
			BatteryRoundTripEfficiency: 0.8,
			BatteryUtilizationFactor:   0.5,
			SelfConsumptionShare:       0.5,
		},
	}
}

func newTestPortfolio(t *testing.T) *Service {
	t.Helper()

	catalog := &catalogStub{projects: map[string]projects.Project{
		"solar-1": {
			ID: "solar-1", Name: "Solar One", Energy: domain.EnergySolar,
			PricePerShare: 500, CapacityPerShare: 0.5,
			TotalShares: 1000, AvailableShares: 800,
			// Two days at 4 kW: 192 kWh per share
			Production: flatDays("2023-01-01", 2, 4),
		},
		"battery-1": {
			ID: "battery-1", Name: "Battery One", Energy: domain.EnergyBattery,
			PricePerShare: 750, CapacityPerShare: 2.0,
			TotalShares: 200, AvailableShares: 150,
		},
	}}
	profiles := &profileStub{profiles: map[string]timeseries.Series{
		"POD1": flatDays("2023-01-01", 2, 2),
	}}

	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	svc := NewService(repo, catalog, profiles, nil, testConfig(), zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)
	}

	require.NoError(t, svc.RegisterUser(User{
		UserID: "u1", Name: "Test User", PodID: "POD1", RegistrationDate: "2023-01-01",
	}))
	return svc
}

func buy(t *testing.T, svc *Service, project string, shares int, price float64, date string) {
	t.Helper()
	_, err := svc.RecordTransaction("u1", TransactionInput{
		ProjectID:     project,
		Direction:     "buy",
		Shares:        shares,
		PricePerShare: &price,
		ExecutedAt:    date,
	})
	require.NoError(t, err)
}

func TestReportValuation(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "solar-1", 10, 400, "2023-01-15")

	report, err := svc.Report("u1", "ytd", true)
	require.NoError(t, err)

	assert.Equal(t, "u1", report.UserID)
	assert.Equal(t, "ytd", report.Period.Type)
	assert.Equal(t, "2023-01-01", report.Period.StartDate)

	require.Len(t, report.Investments, 1)
	inv := report.Investments[0]
	assert.Equal(t, 10, inv.Shares)
	assert.Equal(t, 5.0, inv.Capacity)
	assert.Equal(t, "kW", inv.CapacityUnit)
	assert.Equal(t, "2023-01-15", inv.FirstPurchaseDate)
	assert.Equal(t, 350, inv.DaysHeld)

	// Bought at 400, catalog prices the share at 500
	assert.Equal(t, 400.0, inv.Investment.AveragePurchasePrice)
	assert.Equal(t, 4000.0, inv.Investment.TotalCostBasis)
	assert.Equal(t, 500.0, inv.Investment.CurrentPricePerShare)
	assert.Equal(t, 5000.0, inv.Investment.CurrentValue)
	assert.Equal(t, 1000.0, inv.Investment.GainLoss)
	assert.Equal(t, 25.0, inv.Investment.GainLossPercentage)
	assert.Greater(t, inv.Investment.AnnualizedReturn, 25.0)

	require.NotNil(t, inv.Production)
	assert.InDelta(t, 1920.0, inv.Production.TotalKWh, 0.01)
	assert.Equal(t, 192, inv.Production.DataPoints)

	assert.Equal(t, 1, report.Summary.TotalProjects)
	assert.Equal(t, 10, report.Summary.TotalShares)
	assert.Equal(t, 4000.0, report.Summary.TotalInvestment)
	assert.Equal(t, 5000.0, report.Summary.CurrentValue)
	assert.Equal(t, 1000.0, report.Summary.TotalGainLoss)
	assert.Equal(t, 25.0, report.Summary.TotalGainLossPercentage)

	// 1920 kWh annual production at the 50/50 split of price and tariff
	assert.InDelta(t, 1920*0.175, report.Summary.EstimatedAnnualSavings, 0.01)
	require.NotNil(t, report.Summary.PaybackYears)
	assert.Greater(t, *report.Summary.PaybackYears, 0.0)

	solar := report.ByEnergyType["solar"]
	assert.Equal(t, 10, solar.Shares)
	assert.Equal(t, 5.0, solar.Capacity)
}

func TestReportSellsReduceAtAverageCost(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "solar-1", 10, 400, "2023-01-15")
	buy(t, svc, "solar-1", 10, 600, "2023-02-15")

	price := 500.0
	_, err := svc.RecordTransaction("u1", TransactionInput{
		ProjectID: "solar-1", Direction: "sell", Shares: 5,
		PricePerShare: &price, ExecutedAt: "2023-03-15",
	})
	require.NoError(t, err)

	report, err := svc.Report("u1", "ytd", false)
	require.NoError(t, err)
	require.Len(t, report.Investments, 1)

	inv := report.Investments[0]
	assert.Equal(t, 15, inv.Shares)
	// Average cost 500: 20 shares for 10000, minus 5 released at 500
	assert.Equal(t, 7500.0, inv.Investment.TotalCostBasis)
	assert.Equal(t, 500.0, inv.Investment.AveragePurchasePrice)
	assert.Len(t, inv.TransactionHistory, 3)
	assert.Nil(t, inv.Production)
}

func TestReportDropsFullySoldPositions(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "solar-1", 5, 500, "2023-01-15")

	price := 500.0
	_, err := svc.RecordTransaction("u1", TransactionInput{
		ProjectID: "solar-1", Direction: "sell", Shares: 5,
		PricePerShare: &price, ExecutedAt: "2023-02-15",
	})
	require.NoError(t, err)

	report, err := svc.Report("u1", "all", false)
	require.NoError(t, err)
	assert.Empty(t, report.Investments)
	assert.Zero(t, report.Summary.TotalShares)
	assert.Nil(t, report.Summary.PaybackYears)
}

func TestReportBatterySavings(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "battery-1", 3, 750, "2023-01-15")

	report, err := svc.Report("u1", "ytd", true)
	require.NoError(t, err)

	// 6 kWh * 365 * 1 * 0.8 * 0.5 * 0.30
	expected := 6.0 * 365 * 0.8 * 0.5 * 0.30
	assert.InDelta(t, expected, report.Summary.EstimatedAnnualSavings, 0.01)

	require.Len(t, report.Investments, 1)
	assert.Equal(t, "kWh", report.Investments[0].CapacityUnit)
	assert.Nil(t, report.Investments[0].Production)
}

func TestReportConsumptionBlock(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "solar-1", 1, 500, "2023-01-15")

	report, err := svc.Report("u1", "ytd", false)
	require.NoError(t, err)

	require.NotNil(t, report.Consumption)
	// Two days at 2 kW
	assert.InDelta(t, 96.0, report.Consumption.TotalKWh, 0.01)
	assert.InDelta(t, 2.0, report.Consumption.AverageKW, 0.01)
	assert.Equal(t, 192, report.Consumption.DataPoints)
	assert.GreaterOrEqual(t, report.Consumption.SelfConsumptionRate, 0.0)
	assert.LessOrEqual(t, report.Consumption.AutarkyRate, 100.0)
}

func TestReportPeriodValidation(t *testing.T) {
	svc := newTestPortfolio(t)

	_, err := svc.Report("u1", "2w", false)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.Report("missing", "ytd", false)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReportPeriodWindows(t *testing.T) {
	svc := newTestPortfolio(t)

	for _, period := range []string{"ytd", "1m", "3m", "6m", "1y", "all"} {
		report, err := svc.Report("u1", period, false)
		require.NoError(t, err, period)
		assert.Equal(t, period, report.Period.Type)
		assert.GreaterOrEqual(t, report.Period.Days, 1)
	}
}

func TestRecordTransactionValidation(t *testing.T) {
	svc := newTestPortfolio(t)

	tests := []struct {
		name  string
		input TransactionInput
		want  error
	}{
		{"missing project", TransactionInput{Direction: "buy", Shares: 1}, domain.ErrInvalidInput},
		{"bad direction", TransactionInput{ProjectID: "solar-1", Direction: "hold", Shares: 1}, domain.ErrInvalidInput},
		{"zero shares", TransactionInput{ProjectID: "solar-1", Direction: "buy", Shares: 0}, domain.ErrInvalidInput},
		{"bad date", TransactionInput{ProjectID: "solar-1", Direction: "buy", Shares: 1, ExecutedAt: "15.01.2023"}, domain.ErrInvalidInput},
		{"unknown project", TransactionInput{ProjectID: "nope", Direction: "buy", Shares: 1}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordTransaction("u1", tt.input)
			assert.True(t, errors.Is(err, tt.want))
		})
	}

	_, err := svc.RecordTransaction("ghost", TransactionInput{ProjectID: "solar-1", Direction: "buy", Shares: 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRecordTransactionEnrichesFromCatalog(t *testing.T) {
	svc := newTestPortfolio(t)

	tx, err := svc.RecordTransaction("u1", TransactionInput{
		ProjectID: "solar-1", Direction: "buy", Shares: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "Solar One", tx.ProjectName)
	assert.Equal(t, domain.EnergySolar, tx.EnergyType)
	// Price defaults to the catalog price when omitted
	assert.Equal(t, 500.0, tx.PricePerShare)
	assert.Equal(t, 500.0, tx.CurrentValuePerShare)
	assert.Equal(t, 0.5, tx.CapacityPerShare)
	assert.Equal(t, "2023-12-31", tx.ExecutedAt)
	assert.NotZero(t, tx.ID)
}

func TestProductionSeries(t *testing.T) {
	svc := newTestPortfolio(t)
	buy(t, svc, "solar-1", 10, 500, "2023-01-15")

	daily, err := svc.ProductionSeries("u1", "", "", "daily")
	require.NoError(t, err)
	require.Len(t, daily, 2)
	// One day at 4 kW per share, 10 shares: 960 kWh
	assert.InDelta(t, 960.0, daily[0].Value, 0.01)

	monthly, err := svc.ProductionSeries("u1", "", "", "monthly")
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.InDelta(t, 1920.0, monthly[0].Value, 0.01)

	// Date filter trims to the first day
	filtered, err := svc.ProductionSeries("u1", "2023-01-01", "2023-01-01", "daily")
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	_, err = svc.ProductionSeries("u1", "", "", "weekly")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.ProductionSeries("u1", "bad", "", "daily")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = svc.ProductionSeries("ghost", "", "", "daily")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

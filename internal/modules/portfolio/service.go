package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/events"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
	"github.com/delphienergy/sunshare/pkg/formulas"
)

const dateLayout = "2006-01-02"

// ProjectSource resolves a project by ID, with its production curve.
type ProjectSource interface {
	Get(id string) (projects.Project, error)
}

// ProfileSource loads a POD's consumption curve.
type ProfileSource interface {
	LoadProfile(pod string) (timeseries.Series, error)
}

// Service builds portfolio reports from the transaction ledger, valuing
// positions against the live catalog and the project production curves.
type Service struct {
	repo        *Repository
	catalog     ProjectSource
	profiles    ProfileSource
	events      *events.Manager
	price       float64
	tariff      float64
	assumptions config.Assumptions
	log         zerolog.Logger
	now         func() time.Time
}

// NewService creates the portfolio service. events may be nil.
func NewService(repo *Repository, catalog ProjectSource, profiles ProfileSource, eventManager *events.Manager, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		profiles:    profiles,
		events:      eventManager,
		price:       cfg.DefaultElectricityPrice,
		tariff:      cfg.DefaultFeedInTariff,
		assumptions: cfg.Assumptions,
		log:         log.With().Str("service", "portfolio").Logger(),
		now:         time.Now,
	}
}

// position is a project holding replayed from the transaction ledger.
type position struct {
	projectID        string
	projectName      string
	energy           domain.EnergyType
	shares           int
	costBasis        float64
	currentValue     float64 // per share, from the latest transaction
	capacityPerShare float64
	capacityUnit     string
	firstPurchase    string
	history          []TransactionEntry
}

// buildPositions replays transactions in execution order. Buys add shares
// and cost; sells release cost at the running average purchase price.
// Fully sold positions are dropped from the report.
func buildPositions(txs []Transaction) []position {
	byProject := make(map[string]*position)
	var order []string

	for _, tx := range txs {
		pos, ok := byProject[tx.ProjectID]
		if !ok {
			pos = &position{
				projectID:        tx.ProjectID,
				projectName:      tx.ProjectName,
				energy:           tx.EnergyType,
				capacityPerShare: tx.CapacityPerShare,
				capacityUnit:     tx.CapacityUnit,
			}
			byProject[tx.ProjectID] = pos
			order = append(order, tx.ProjectID)
		}
		pos.currentValue = tx.CurrentValuePerShare
		pos.history = append(pos.history, TransactionEntry{
			Date:          tx.ExecutedAt,
			Direction:     tx.Direction,
			Shares:        tx.Shares,
			PricePerShare: tx.PricePerShare,
		})

		switch tx.Direction {
		case "sell":
			sold := tx.Shares
			if sold > pos.shares {
				sold = pos.shares
			}
			if pos.shares > 0 {
				avg := pos.costBasis / float64(pos.shares)
				pos.costBasis -= float64(sold) * avg
			}
			pos.shares -= sold
		default:
			if pos.firstPurchase == "" {
				pos.firstPurchase = tx.ExecutedAt
			}
			pos.shares += tx.Shares
			pos.costBasis += float64(tx.Shares) * tx.PricePerShare
		}
	}

	out := make([]position, 0, len(byProject))
	for _, id := range order {
		if byProject[id].shares > 0 {
			out = append(out, *byProject[id])
		}
	}
	return out
}

// resolvePeriod turns a period name into a concrete window ending today.
func (s *Service) resolvePeriod(period string) (PeriodInfo, time.Time, time.Time, error) {
	end := s.now().UTC().Truncate(24 * time.Hour).Add(24*time.Hour - time.Second)
	var start time.Time

	switch period {
	case "", "ytd":
		period = "ytd"
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case "1m":
		start = end.AddDate(0, -1, 0)
	case "3m":
		start = end.AddDate(0, -3, 0)
	case "6m":
		start = end.AddDate(0, -6, 0)
	case "1y":
		start = end.AddDate(-1, 0, 0)
	case "all":
		start = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return PeriodInfo{}, time.Time{}, time.Time{}, fmt.Errorf("unknown period %q: %w", period, domain.ErrInvalidInput)
	}

	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return PeriodInfo{
		Type:      period,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Days:      days,
	}, start, end, nil
}

// Report builds the portfolio valuation report for a user.
func (s *Service) Report(userID, period string, includeProduction bool) (Report, error) {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return Report{}, err
	}

	info, start, end, err := s.resolvePeriod(period)
	if err != nil {
		return Report{}, err
	}

	txs, err := s.repo.ListTransactions(userID)
	if err != nil {
		return Report{}, err
	}
	positions := buildPositions(txs)

	report := Report{
		UserID:           user.UserID,
		UserName:         user.Name,
		PodID:            user.PodID,
		RegistrationDate: user.RegistrationDate,
		Period:           info,
		ByEnergyType:     make(map[string]TypeRollup),
		Investments:      make([]InvestmentDetail, 0, len(positions)),
	}

	today := s.now().UTC()
	var annualSavings float64
	for _, pos := range positions {
		detail, periodKWh, annual := s.valuePosition(pos, start, end, today, includeProduction)
		annualSavings += annual

		report.Summary.TotalProjects++
		report.Summary.TotalShares += detail.Shares
		report.Summary.TotalInvestment += detail.Investment.TotalCostBasis
		report.Summary.CurrentValue += detail.Investment.CurrentValue
		report.Summary.TotalProductionKWh += periodKWh

		rollup := report.ByEnergyType[string(detail.EnergyType)]
		rollup.Shares += detail.Shares
		rollup.Investment += detail.Investment.TotalCostBasis
		rollup.Capacity = formulas.Round(rollup.Capacity+detail.Capacity, 2)
		rollup.ProductionKWh = formulas.Round(rollup.ProductionKWh+periodKWh, 2)
		report.ByEnergyType[string(detail.EnergyType)] = rollup

		report.Investments = append(report.Investments, detail)
	}

	report.Summary.TotalGainLoss = formulas.Round(report.Summary.CurrentValue-report.Summary.TotalInvestment, 2)
	if report.Summary.TotalInvestment > 0 {
		report.Summary.TotalGainLossPercentage = formulas.Round(
			report.Summary.TotalGainLoss/report.Summary.TotalInvestment*100, 2)
	}
	report.Summary.TotalInvestment = formulas.Round(report.Summary.TotalInvestment, 2)
	report.Summary.CurrentValue = formulas.Round(report.Summary.CurrentValue, 2)
	report.Summary.TotalProductionKWh = formulas.Round(report.Summary.TotalProductionKWh, 2)
	report.Summary.EstimatedAnnualSavings = formulas.Round(annualSavings, 2)
	report.Summary.PaybackYears = formulas.PaybackPtr(
		formulas.PaybackYears(report.Summary.TotalInvestment, annualSavings))

	if user.PodID != "" {
		report.Consumption = s.consumptionBlock(user.PodID, start, end, report.Summary.TotalProductionKWh)
	}
	return report, nil
}

// valuePosition turns one position into its report detail. It returns the
// detail, the production over the period in kWh, and the estimated annual
// savings contribution of the position.
func (s *Service) valuePosition(pos position, start, end, today time.Time, includeProduction bool) (InvestmentDetail, float64, float64) {
	currentPrice := pos.currentValue
	var curve timeseries.Series
	if proj, err := s.catalog.Get(pos.projectID); err == nil {
		currentPrice = proj.PricePerShare
		curve = proj.Production
		if pos.capacityPerShare == 0 {
			pos.capacityPerShare = proj.CapacityPerShare
			pos.capacityUnit = proj.CapacityUnit()
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		s.log.Warn().Err(err).Str("project_id", pos.projectID).Msg("Failed to resolve project for valuation")
	}

	currentValue := float64(pos.shares) * currentPrice
	gain := currentValue - pos.costBasis
	gainPct := 0.0
	avgPrice := 0.0
	if pos.costBasis > 0 {
		gainPct = gain / pos.costBasis * 100
	}
	if pos.shares > 0 {
		avgPrice = pos.costBasis / float64(pos.shares)
	}

	daysHeld := 0
	if pos.firstPurchase != "" {
		if first, err := time.Parse(dateLayout, pos.firstPurchase); err == nil {
			daysHeld = int(today.Sub(first).Hours() / 24)
			if daysHeld < 0 {
				daysHeld = 0
			}
		}
	}

	detail := InvestmentDetail{
		ProjectID:          pos.projectID,
		ProjectName:        pos.projectName,
		EnergyType:         pos.energy,
		Shares:             pos.shares,
		Capacity:           formulas.Round(float64(pos.shares)*pos.capacityPerShare, 2),
		CapacityUnit:       pos.capacityUnit,
		FirstPurchaseDate:  pos.firstPurchase,
		DaysHeld:           daysHeld,
		TransactionHistory: pos.history,
		Investment: InvestmentFigures{
			AveragePurchasePrice: formulas.Round(avgPrice, 2),
			TotalCostBasis:       formulas.Round(pos.costBasis, 2),
			CurrentPricePerShare: formulas.Round(currentPrice, 2),
			CurrentValue:         formulas.Round(currentValue, 2),
			GainLoss:             formulas.Round(gain, 2),
			GainLossPercentage:   formulas.Round(gainPct, 2),
			AnnualizedReturn:     formulas.Round(formulas.AnnualizedReturn(gainPct, daysHeld), 2),
		},
	}

	var periodKWh float64
	if len(curve) > 0 {
		windowed := curve.Window(start, end)
		periodKWh = windowed.EnergyKWh() * float64(pos.shares)
		if includeProduction {
			detail.Production = &ProductionFigures{
				TotalKWh:   formulas.Round(periodKWh, 2),
				DataPoints: len(windowed),
				StartDate:  start.Format(dateLayout),
				EndDate:    end.Format(dateLayout),
			}
		}
	}

	return detail, periodKWh, s.annualSavings(pos, curve)
}

// annualSavings estimates the yearly benefit of a position. Generating
// projects split their annual output between avoided purchases and feed-in
// at the configured self-consumption share; batteries use the shifted-energy
// model shared with the optimizer.
func (s *Service) annualSavings(pos position, curve timeseries.Series) float64 {
	if pos.energy.IsBattery() {
		return float64(pos.shares) * pos.capacityPerShare * 365 *
			s.assumptions.BatteryDailyCycles *
			s.assumptions.BatteryRoundTripEfficiency *
			s.assumptions.BatteryUtilizationFactor *
			s.price
	}
	if len(curve) == 0 {
		return 0
	}
	annualKWh := curve.EnergyKWh() * float64(pos.shares)
	selfShare := s.assumptions.SelfConsumptionShare
	return annualKWh * (selfShare*s.price + (1-selfShare)*s.tariff)
}

// consumptionBlock loads the user's POD curve for the period. A missing
// profile is not an error; the block is simply omitted.
func (s *Service) consumptionBlock(pod string, start, end time.Time, productionKWh float64) *ConsumptionInfo {
	profile, err := s.profiles.LoadProfile(pod)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Str("pod", pod).Msg("Failed to load consumption profile")
		}
		return nil
	}

	windowed := profile.Window(start, end)
	if len(windowed) == 0 {
		return nil
	}

	consumptionKWh := windowed.EnergyKWh()
	selfConsumed := productionKWh * s.assumptions.SelfConsumptionShare
	return &ConsumptionInfo{
		TotalKWh:            formulas.Round(consumptionKWh, 2),
		AverageKW:           formulas.Round(formulas.Mean(windowed.Values()), 3),
		MaxKW:               formulas.Round(windowed.Max(), 3),
		DataPoints:          len(windowed),
		SelfConsumptionRate: formulas.Round(formulas.SelfConsumptionRate(selfConsumed, productionKWh), 2),
		AutarkyRate:         formulas.Round(formulas.AutarkyRate(selfConsumed, consumptionKWh), 2),
	}
}

// ProductionSeries aggregates production across all holdings, each project
// curve scaled by the shares held, bucketed daily or monthly.
func (s *Service) ProductionSeries(userID, startDate, endDate, aggregation string) ([]timeseries.AggregatePoint, error) {
	if _, err := s.repo.GetUser(userID); err != nil {
		return nil, err
	}

	switch aggregation {
	case "", "daily", "monthly":
	default:
		return nil, fmt.Errorf("aggregation must be daily or monthly: %w", domain.ErrInvalidInput)
	}

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(userID)
	if err != nil {
		return nil, err
	}

	// Sum the scaled project curves sample by sample, keyed on timestamp so
	// projects with different curve lengths still combine correctly.
	sums := make(map[time.Time]float64)
	for _, pos := range buildPositions(txs) {
		proj, err := s.catalog.Get(pos.projectID)
		if err != nil {
			continue
		}
		for _, p := range proj.Production.Window(start, end) {
			sums[p.Timestamp] += p.Value * float64(pos.shares)
		}
	}

	combined := make(timeseries.Series, 0, len(sums))
	for ts, v := range sums {
		combined = append(combined, timeseries.Sample{Timestamp: ts, Value: v})
	}
	sort.Slice(combined, func(i, j int) bool {
		return combined[i].Timestamp.Before(combined[j].Timestamp)
	})

	if aggregation == "monthly" {
		return timeseries.AggregateByMonth(combined, 0), nil
	}
	return timeseries.AggregateByDay(combined, 0, 0), nil
}

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	start := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

	if startDate != "" {
		t, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", startDate, domain.ErrInvalidInput)
		}
		start = t
	}
	if endDate != "" {
		t, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", endDate, domain.ErrInvalidInput)
		}
		end = t.Add(24*time.Hour - time.Second)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date before start_date: %w", domain.ErrInvalidInput)
	}
	return start, end, nil
}

// TransactionInput is a transaction to record, before catalog enrichment.
type TransactionInput struct {
	ProjectID     string
	Direction     string
	Shares        int
	PricePerShare *float64
	ExecutedAt    string
}

// RecordTransaction validates and persists a share transaction. Project
// name, energy type, capacity and current value are resolved from the
// catalog; the price per share defaults to the catalog price when omitted.
func (s *Service) RecordTransaction(userID string, input TransactionInput) (Transaction, error) {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return Transaction{}, err
	}
	if input.ProjectID == "" {
		return Transaction{}, fmt.Errorf("project_id is required: %w", domain.ErrInvalidInput)
	}
	if input.Direction != "buy" && input.Direction != "sell" {
		return Transaction{}, fmt.Errorf("direction must be buy or sell: %w", domain.ErrInvalidInput)
	}
	if input.Shares <= 0 {
		return Transaction{}, fmt.Errorf("shares must be positive: %w", domain.ErrInvalidInput)
	}
	if input.PricePerShare != nil && *input.PricePerShare < 0 {
		return Transaction{}, fmt.Errorf("price_per_share must not be negative: %w", domain.ErrInvalidInput)
	}

	proj, err := s.catalog.Get(input.ProjectID)
	if err != nil {
		return Transaction{}, err
	}

	executedAt := input.ExecutedAt
	if executedAt == "" {
		executedAt = s.now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, executedAt); err != nil {
		return Transaction{}, fmt.Errorf("invalid executed_at %q: %w", executedAt, domain.ErrInvalidInput)
	}

	price := proj.PricePerShare
	if input.PricePerShare != nil {
		price = *input.PricePerShare
	}

	tx := Transaction{
		UserID:               user.UserID,
		ProjectID:            proj.ID,
		ProjectName:          proj.Name,
		EnergyType:           proj.Energy,
		Direction:            input.Direction,
		Shares:               input.Shares,
		PricePerShare:        price,
		CurrentValuePerShare: proj.PricePerShare,
		CapacityPerShare:     proj.CapacityPerShare,
		CapacityUnit:         proj.CapacityUnit(),
		ExecutedAt:           executedAt,
	}
	id, err := s.repo.CreateTransaction(tx)
	if err != nil {
		return Transaction{}, err
	}
	tx.ID = id

	s.log.Info().
		Str("user_id", userID).
		Str("project_id", tx.ProjectID).
		Str("direction", tx.Direction).
		Int("shares", tx.Shares).
		Msg("Share transaction recorded")
	if s.events != nil {
		s.events.Emit(events.TransactionRecorded, "portfolio", map[string]interface{}{
			"user_id":    userID,
			"project_id": tx.ProjectID,
			"direction":  tx.Direction,
			"shares":     tx.Shares,
		})
	}
	return tx, nil
}

// RegisterUser creates or updates a portfolio user.
func (s *Service) RegisterUser(u User) error {
	if u.UserID == "" || u.Name == "" {
		return fmt.Errorf("user_id and name are required: %w", domain.ErrInvalidInput)
	}
	if u.RegistrationDate == "" {
		u.RegistrationDate = s.now().UTC().Format(dateLayout)
	}
	return s.repo.CreateUser(u)
}

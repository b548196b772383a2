package optimizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/events"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// ProfileSource supplies a household's consumption curve by POD id.
type ProfileSource interface {
	LoadProfile(pod string) (timeseries.Series, error)
}

// CatalogSource supplies an immutable per-request snapshot of the project
// catalog. The optimizer never touches shared inventory counters.
type CatalogSource interface {
	Snapshot() []projects.Project
}

// Service orchestrates one optimization request: load the profile, snapshot
// the catalog, run the greedy allocation, aggregate, persist the run.
type Service struct {
	profiles    ProfileSource
	catalog     CatalogSource
	runs        *RunRepository
	events      *events.Manager
	assumptions config.Assumptions
	log         zerolog.Logger
}

// NewService creates a new optimizer service. The run repository and event
// manager may be nil (tests exercise the pure pipeline without them).
func NewService(
	profiles ProfileSource,
	catalog CatalogSource,
	runs *RunRepository,
	eventManager *events.Manager,
	assumptions config.Assumptions,
	log zerolog.Logger,
) *Service {
	return &Service{
		profiles:    profiles,
		catalog:     catalog,
		runs:        runs,
		events:      eventManager,
		assumptions: assumptions,
		log:         log.With().Str("service", "optimizer").Logger(),
	}
}

// Optimize runs the full pipeline for one request. It either returns a
// complete, consistent result or an error; there are no partial results.
func (s *Service) Optimize(req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if s.events != nil {
		s.events.Emit(events.OptimizationStarted, "optimizer", map[string]interface{}{
			"run_id": runID,
			"pod_id": req.PodID,
		})
	}

	load, err := s.profiles.LoadProfile(req.PodID)
	if err != nil {
		if s.events != nil {
			s.events.Emit(events.OptimizationFailed, "optimizer", map[string]interface{}{
				"run_id": runID,
				"pod_id": req.PodID,
				"error":  err.Error(),
			})
		}
		return nil, err
	}

	catalog := s.catalog.Snapshot()
	s.logAlignment(req.PodID, load, catalog)

	estimator := NewEstimator(req.ElectricityPrice, req.FeedInTariff, s.assumptions)
	allocator := NewAllocator(estimator, req.MaxSharesPerProject, s.log)

	start := time.Now()
	committed := allocator.Allocate(load, catalog, req.Budget)
	result := NewAggregator(req.ElectricityPrice).Build(load, committed)

	s.log.Info().
		Str("run_id", runID).
		Str("pod_id", req.PodID).
		Int("recommendations", len(result.Recommendations)).
		Float64("total_investment", result.TotalInvestment).
		Dur("duration", time.Since(start)).
		Msg("Optimization complete")

	if s.runs != nil {
		if err := s.runs.Create(runID, req, result); err != nil {
			// Persisting history must not fail the request
			s.log.Warn().Err(err).Str("run_id", runID).Msg("Failed to persist optimization run")
		}
	}

	if s.events != nil {
		s.events.Emit(events.OptimizationCompleted, "optimizer", map[string]interface{}{
			"run_id":           runID,
			"pod_id":           req.PodID,
			"recommendations":  len(result.Recommendations),
			"total_investment": result.TotalInvestment,
		})
	}

	return result, nil
}

func validate(req Request) error {
	if req.PodID == "" {
		return fmt.Errorf("pod_id is required: %w", domain.ErrInvalidInput)
	}
	if req.ElectricityPrice < 0 {
		return fmt.Errorf("electricity_price must be non-negative: %w", domain.ErrInvalidInput)
	}
	if req.FeedInTariff < 0 {
		return fmt.Errorf("feed_in_tariff must be non-negative: %w", domain.ErrInvalidInput)
	}
	if req.Budget != nil && *req.Budget < 0 {
		return fmt.Errorf("budget must be non-negative: %w", domain.ErrInvalidInput)
	}
	if req.MaxSharesPerProject < 0 {
		return fmt.Errorf("max_shares_per_project must be non-negative: %w", domain.ErrInvalidInput)
	}
	return nil
}

// logAlignment warns once per project whose production curve length differs
// from the load curve; the comparison itself truncates to the overlap.
func (s *Service) logAlignment(pod string, load timeseries.Series, catalog []projects.Project) {
	for _, p := range catalog {
		if p.IsBattery() || len(p.Production) == len(load) {
			continue
		}
		s.log.Warn().
			Str("pod", pod).
			Str("project", p.ID).
			Int("production_samples", len(p.Production)).
			Int("load_samples", len(load)).
			Msg("Curve length mismatch, truncating to overlap")
	}
}

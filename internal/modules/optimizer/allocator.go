package optimizer

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
	"github.com/delphienergy/sunshare/pkg/formulas"
)

// Allocator greedily commits shares to the project with the shortest payback
// until no affordable project yields a positive benefit. It owns the
// remaining-load working copy; callers pass the original household curve and
// a catalog snapshot, neither of which is mutated.
type Allocator struct {
	estimator *Estimator
	maxShares int
	log       zerolog.Logger
}

// NewAllocator creates an allocator for one optimization run.
func NewAllocator(estimator *Estimator, maxSharesPerProject int, log zerolog.Logger) *Allocator {
	return &Allocator{
		estimator: estimator,
		maxShares: maxSharesPerProject,
		log:       log.With().Str("service", "allocator").Logger(),
	}
}

// Allocate runs the greedy loop and returns the committed candidates in
// allocation order. A nil budget means unlimited.
//
// Each iteration every uncommitted project is evaluated once, at its best
// affordable share count. Because self-consumption saturates as the load
// fills, generation benefit is concave and non-decreasing in the share
// count, so the best affordable count is the upper bound itself:
// min(max shares, available shares, floor(budget / price)).
func (a *Allocator) Allocate(load timeseries.Series, catalog []projects.Project, budget *float64) []Candidate {
	remaining := load.Clone()

	remainingBudget := math.Inf(1)
	if budget != nil {
		remainingBudget = *budget
	}

	pool := make([]projects.Project, len(catalog))
	copy(pool, catalog)

	var committed []Candidate
	for len(pool) > 0 {
		candidates := a.evaluatePool(pool, remaining, remainingBudget)
		if len(candidates) == 0 {
			break
		}

		rankCandidates(candidates)
		best := candidates[0]

		committed = append(committed, best)
		remainingBudget -= best.Investment

		if !best.Project.IsBattery() {
			subtractSelfConsumption(remaining, best.Project.Production, float64(best.Shares))
		}

		// Each project appears at most once per run
		pool = removeProject(pool, best.Project.ID)

		a.log.Debug().
			Str("project", best.Project.ID).
			Int("shares", best.Shares).
			Float64("investment", best.Investment).
			Float64("annual_benefit", best.AnnualBenefit).
			Msg("Committed allocation")
	}

	return committed
}

// evaluatePool evaluates every project at its affordable upper bound and
// keeps the candidates with a finite, positive payback.
func (a *Allocator) evaluatePool(pool []projects.Project, remaining timeseries.Series, budget float64) []Candidate {
	var candidates []Candidate
	for _, p := range pool {
		if p.PricePerShare <= 0 {
			a.log.Warn().Str("project", p.ID).Msg("Skipping project with non-positive share price")
			continue
		}

		n := a.maxShares
		if p.AvailableShares < n {
			n = p.AvailableShares
		}
		if !math.IsInf(budget, 1) {
			affordable := int(math.Floor(budget / p.PricePerShare))
			if affordable < n {
				n = affordable
			}
		}
		if n <= 0 {
			continue
		}

		c := a.estimator.Evaluate(p, n, remaining)
		if c.AnnualBenefit <= 0 || !formulas.PaybackDefined(c.PaybackYears) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates
}

// rankCandidates orders by ascending payback, then descending benefit, then
// project ID. The last key makes the whole run deterministic.
func rankCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].PaybackYears != candidates[j].PaybackYears {
			return candidates[i].PaybackYears < candidates[j].PaybackYears
		}
		if candidates[i].AnnualBenefit != candidates[j].AnnualBenefit {
			return candidates[i].AnnualBenefit > candidates[j].AnnualBenefit
		}
		return candidates[i].Project.ID < candidates[j].Project.ID
	})
}

// subtractSelfConsumption updates the remaining load in place after a
// generation commitment: each sample loses the energy now covered by the
// committed production.
func subtractSelfConsumption(remaining timeseries.Series, perShare timeseries.Series, scale float64) {
	n := len(remaining)
	if len(perShare) < n {
		n = len(perShare)
	}
	for i := 0; i < n; i++ {
		prod := perShare[i].Value * scale
		if prod <= 0 {
			continue
		}
		self := prod
		if remaining[i].Value < self {
			self = remaining[i].Value
		}
		if self < 0 {
			self = 0
		}
		remaining[i].Value -= self
	}
}

func removeProject(pool []projects.Project, id string) []projects.Project {
	out := pool[:0]
	for _, p := range pool {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

package projects

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// Catalog holds the project list and per-share production curves loaded from
// disk. It is reference data: consumers take immutable snapshots, nobody
// mutates the catalog itself outside Load.
type Catalog struct {
	projectsDir   string
	productionDir string
	log           zerolog.Logger

	mu       sync.RWMutex
	projects []Project
}

// NewCatalog creates a catalog backed by the given data folders.
func NewCatalog(projectsDir, productionDir string, log zerolog.Logger) *Catalog {
	return &Catalog{
		projectsDir:   projectsDir,
		productionDir: productionDir,
		log:           log.With().Str("service", "catalog").Logger(),
	}
}

// Load reads list.json and each project's production profile from disk,
// replacing the in-memory catalog. Generation projects without a production
// file are skipped; battery projects need none.
func (c *Catalog) Load() error {
	listPath := filepath.Join(c.projectsDir, "list.json")

	data, err := os.ReadFile(listPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("projects list %s: %w", listPath, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to read projects list: %w", err)
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse projects list: %w", err)
	}

	projects := make([]Project, 0, len(entries))
	for _, e := range entries {
		p, err := c.buildProject(e)
		if err != nil {
			c.log.Warn().Err(err).Str("project", e.ID).Msg("Skipping project")
			continue
		}
		projects = append(projects, p)
	}

	// Stable catalog order keeps optimizer output deterministic
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].ID < projects[j].ID
	})

	c.mu.Lock()
	c.projects = projects
	c.mu.Unlock()

	c.log.Info().Int("projects", len(projects)).Msg("Catalog loaded")
	return nil
}

func (c *Catalog) buildProject(e catalogEntry) (Project, error) {
	energy := domain.EnergyType(e.Energy)
	if !energy.Valid() {
		return Project{}, fmt.Errorf("unknown energy type %q", e.Energy)
	}

	capacity := 1.0
	if e.CapacityPerShare != nil {
		capacity = e.CapacityPerShare.Value
	} else if e.Capacity != nil {
		capacity = e.Capacity.Value
	}

	price := e.Shares.Price
	if price == 0 {
		price = 1000
	}

	name := e.Name
	if name == "" {
		name = e.ID
	}

	p := Project{
		ID:               e.ID,
		Name:             name,
		Energy:           energy,
		PricePerShare:    price,
		CapacityPerShare: capacity,
		TotalShares:      e.Shares.Total,
		AvailableShares:  e.Shares.Available,
	}

	if !energy.IsBattery() {
		production, err := c.loadProduction(e.ID)
		if err != nil {
			return Project{}, err
		}
		p.Production = production
	}

	return p, nil
}

func (c *Catalog) loadProduction(projectID string) (timeseries.Series, error) {
	path := filepath.Join(c.productionDir, projectID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("production profile %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read production profile: %w", err)
	}

	var entries []productionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse production profile: %w", err)
	}

	series := make(timeseries.Series, 0, len(entries))
	for _, e := range entries {
		ts, err := timeseries.ParseTimestamp(e.Timestamp)
		if err != nil {
			continue
		}
		series = append(series, timeseries.Sample{Timestamp: ts, Value: e.Value})
	}

	return series, nil
}

// Snapshot returns a deep, per-request copy of the catalog. The optimizer
// decrements available-share counters on its snapshot only; the shared
// catalog never changes outside Load.
func (c *Catalog) Snapshot() []Project {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Project, len(c.projects))
	for i, p := range c.projects {
		cp := p
		cp.Production = p.Production.Clone()
		out[i] = cp
	}
	return out
}

// List returns the catalog entries without production curves, for the
// projects API endpoint.
func (c *Catalog) List() []Project {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Project, len(c.projects))
	for i, p := range c.projects {
		cp := p
		cp.Production = nil
		out[i] = cp
	}
	return out
}

// Get returns a single project by ID, production curve included.
func (c *Catalog) Get(id string) (Project, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.projects {
		if p.ID == id {
			cp := p
			cp.Production = p.Production.Clone()
			return cp, nil
		}
	}
	return Project{}, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
}

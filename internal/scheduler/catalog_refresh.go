package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/events"
	"github.com/delphienergy/sunshare/internal/modules/projects"
)

// CatalogRefreshJob reloads the project catalog from disk so that edits to
// the data files show up without a restart.
type CatalogRefreshJob struct {
	catalog *projects.Catalog
	events  *events.Manager
	log     zerolog.Logger
}

// NewCatalogRefreshJob creates a catalog refresh job. events may be nil.
func NewCatalogRefreshJob(catalog *projects.Catalog, eventManager *events.Manager, log zerolog.Logger) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		catalog: catalog,
		events:  eventManager,
		log:     log.With().Str("job", "catalog_refresh").Logger(),
	}
}

// Name returns the job name
func (j *CatalogRefreshJob) Name() string {
	return "catalog_refresh"
}

// Run reloads the catalog
func (j *CatalogRefreshJob) Run() error {
	if err := j.catalog.Load(); err != nil {
		return err
	}

	count := len(j.catalog.List())
	j.log.Info().Int("projects", count).Msg("Project catalog refreshed")

	if j.events != nil {
		j.events.Emit(events.CatalogRefreshed, "scheduler", map[string]interface{}{
			"projects": count,
		})
	}
	return nil
}

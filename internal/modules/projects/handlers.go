package projects

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// Handler handles project catalog HTTP requests
type Handler struct {
	catalog *Catalog
	mix     *MixStore
	log     zerolog.Logger
}

// NewHandler creates a new projects handler
func NewHandler(catalog *Catalog, mix *MixStore, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		mix:     mix,
		log:     log.With().Str("handler", "projects").Logger(),
	}
}

// HandleList returns the project catalog without production curves
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	projects := h.catalog.List()

	result := make([]map[string]interface{}, 0, len(projects))
	for _, p := range projects {
		result = append(result, map[string]interface{}{
			"id":                 p.ID,
			"name":               p.Name,
			"energy":             p.Energy,
			"price_per_share":    p.PricePerShare,
			"capacity_per_share": p.CapacityPerShare,
			"capacity_unit":      p.CapacityUnit(),
			"total_shares":       p.TotalShares,
			"available_shares":   p.AvailableShares,
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleProductionMonthly returns a project's production aggregated by month
func (h *Handler) HandleProductionMonthly(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	project, err := h.catalog.Get(projectID)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	year := queryInt(r, "year", 0)
	h.writeJSON(w, http.StatusOK, timeseries.AggregateByMonth(project.Production, year))
}

// HandleProductionDaily returns a project's production aggregated by day
func (h *Handler) HandleProductionDaily(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	project, err := h.catalog.Get(projectID)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	month := queryInt(r, "month", 0)
	if month < 0 || month > 12 {
		h.writeError(w, http.StatusBadRequest, "Month must be between 1 and 12")
		return
	}

	year := queryInt(r, "year", 0)
	h.writeJSON(w, http.StatusOK, timeseries.AggregateByDay(project.Production, year, month))
}

// HandleGetMix returns the energy mix reference series for a mix type
func (h *Handler) HandleGetMix(w http.ResponseWriter, r *http.Request) {
	mixType := chi.URLParam(r, "type")

	mix, err := h.mix.Get(mixType)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, mix)
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

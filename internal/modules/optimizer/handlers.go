package optimizer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/domain"
)

// Handler handles optimization HTTP requests
type Handler struct {
	service *Service
	runs    *RunRepository
	cfg     *config.Config
	log     zerolog.Logger
}

// NewHandler creates a new optimizer handler
func NewHandler(service *Service, runs *RunRepository, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		runs:    runs,
		cfg:     cfg,
		log:     log.With().Str("handler", "optimizer").Logger(),
	}
}

// optimizeRequest is the POST body. Pointer fields distinguish "omitted,
// apply default" from an explicit zero.
type optimizeRequest struct {
	PodID               string   `json:"pod_id"`
	ElectricityPrice    *float64 `json:"electricity_price"`
	FeedInTariff        *float64 `json:"feed_in_tariff"`
	Budget              *float64 `json:"budget"`
	MaxSharesPerProject *int     `json:"max_shares_per_project"`
}

// HandleOptimize runs an investment optimization for a POD
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var body optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.PodID == "" {
		h.writeError(w, http.StatusBadRequest, "pod_id is required")
		return
	}

	req := Request{
		PodID:               body.PodID,
		ElectricityPrice:    h.cfg.DefaultElectricityPrice,
		FeedInTariff:        h.cfg.DefaultFeedInTariff,
		Budget:              body.Budget,
		MaxSharesPerProject: h.cfg.DefaultMaxSharesPerProject,
	}
	if body.ElectricityPrice != nil {
		req.ElectricityPrice = *body.ElectricityPrice
	}
	if body.FeedInTariff != nil {
		req.FeedInTariff = *body.FeedInTariff
	}
	if body.MaxSharesPerProject != nil {
		req.MaxSharesPerProject = *body.MaxSharesPerProject
	}

	result, err := h.service.Optimize(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListRuns returns recent optimization run summaries
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	runs, err := h.runs.List(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if runs == nil {
		runs = []Run{}
	}
	h.writeJSON(w, http.StatusOK, runs)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Optimization failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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

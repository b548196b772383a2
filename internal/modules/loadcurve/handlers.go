package loadcurve

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
)

// Handler handles load curve HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new load curve handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "loadcurve").Logger(),
	}
}

// HandleGet returns paginated raw load curve data for a POD
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pod := chi.URLParam(r, "pod")

	q := RawQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 100),
		Date:     r.URL.Query().Get("date"),
		FromDate: r.URL.Query().Get("from_date"),
		ToDate:   r.URL.Query().Get("to_date"),
	}

	page, err := h.service.Raw(pod, q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// HandleGetMonthly returns monthly consumption totals for a POD
func (h *Handler) HandleGetMonthly(w http.ResponseWriter, r *http.Request) {
	pod := chi.URLParam(r, "pod")
	year := queryInt(r, "year", 0)

	data, err := h.service.Monthly(pod, year)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// HandleGetDaily returns daily consumption totals for a POD
func (h *Handler) HandleGetDaily(w http.ResponseWriter, r *http.Request) {
	pod := chi.URLParam(r, "pod")
	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)

	data, err := h.service.Daily(pod, year, month)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// HandleGetStats returns profile statistics for a POD
func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	pod := chi.URLParam(r, "pod")

	stats, err := h.service.Stats(pod)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Load curve request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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

package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns the valuation report for a user
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	period := r.URL.Query().Get("period")
	includeProduction := r.URL.Query().Get("include_production") != "false"

	report, err := h.service.Report(userID, period, includeProduction)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetProduction returns the aggregated production series across holdings
func (h *Handler) HandleGetProduction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	q := r.URL.Query()

	points, err := h.service.ProductionSeries(userID, q.Get("start_date"), q.Get("end_date"), q.Get("aggregation"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if points == nil {
		points = []timeseries.AggregatePoint{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"series":  points,
	})
}

// transactionRequest is the POST body for recording a transaction.
type transactionRequest struct {
	ProjectID     string   `json:"project_id"`
	Direction     string   `json:"direction"`
	Shares        int      `json:"shares"`
	PricePerShare *float64 `json:"price_per_share"`
	ExecutedAt    string   `json:"executed_at"`
}

// HandleCreateTransaction records a buy or sell for a user
func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var body transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.service.RecordTransaction(userID, TransactionInput{
		ProjectID:     body.ProjectID,
		Direction:     body.Direction,
		Shares:        body.Shares,
		PricePerShare: body.PricePerShare,
		ExecutedAt:    body.ExecutedAt,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

// userRequest is the POST body for registering a user.
type userRequest struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	PodID            string `json:"pod_id"`
	RegistrationDate string `json:"registration_date"`
}

// HandleCreateUser registers a portfolio user
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body userRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user := User{
		UserID:           body.UserID,
		Name:             body.Name,
		PodID:            body.PodID,
		RegistrationDate: body.RegistrationDate,
	}
	if err := h.service.RegisterUser(user); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Portfolio request failed")
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

package tdee

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/observability"
)

// Handler serves the calculator endpoints.
type Handler struct {
	logger zerolog.Logger
}

func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{logger: logger.With().Str("component", "tdee").Logger()}
}

// HandleCompute handles POST /v1/tdee
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordTDEE("invalid_input")
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	profile, err := ParseProfile(req)
	if err == nil {
		err = Validate(profile)
	}
	if err != nil {
		observability.RecordTDEE("invalid_input")
		var inputErr *InvalidInputError
		if errors.As(err, &inputErr) {
			writeError(w, http.StatusBadRequest, "invalid_input", inputErr.Error())
			return
		}
		h.logger.Error().Err(err).Msg("tdee parse failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to compute TDEE")
		return
	}

	estimate, err := Compute(profile)
	if err != nil {
		observability.RecordTDEE("invalid_input")
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	observability.RecordTDEE("ok")

	writeJSON(w, http.StatusOK, map[string]any{
		"result": EstimateResponse{
			EnergyEstimate:     estimate,
			BMR:                math.Round(BMR(profile)*100) / 100,
			ActivityMultiplier: profile.ActivityMultiplier,
			Warnings:           Warnings(estimate),
		},
	})
}

// HandleActivityLevels handles GET /v1/tdee/activity-levels
func (h *Handler) HandleActivityLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"result": ActivityLevels()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

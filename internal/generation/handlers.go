package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/ai"
	"github.com/fdg312/fitplan/internal/planner"
)

const maxPreferencesBytes = 64 << 10

type Handlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHandlers(service *Service, logger zerolog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// GenerateResponse is the body of a successful generation call. Result is an
// object in structured mode and a string in raw mode.
type GenerateResponse struct {
	Result any          `json:"result"`
	Mode   planner.Mode `json:"mode"`
}

// HandleGenerateWorkout handles POST /v1/plans/workout/generate
func (h *Handlers) HandleGenerateWorkout(w http.ResponseWriter, r *http.Request) {
	var prefs planner.WorkoutPreferences
	if !decodeBody(w, r, &prefs) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (planner.PlanResponse, error) {
		return h.service.GenerateWorkout(ctx, prefs)
	})
}

// HandleGenerateMeal handles POST /v1/plans/meal/generate
func (h *Handlers) HandleGenerateMeal(w http.ResponseWriter, r *http.Request) {
	var prefs planner.MealPreferences
	if !decodeBody(w, r, &prefs) {
		return
	}
	h.respond(w, r, func(ctx context.Context) (planner.PlanResponse, error) {
		return h.service.GenerateMeal(ctx, prefs)
	})
}

// HandleSchema handles GET /v1/schemas/{kind}
func (h *Handlers) HandleSchema(w http.ResponseWriter, r *http.Request) {
	kind, ok := planner.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "Unknown plan kind")
		return
	}
	schema, err := planner.SchemaJSON(kind)
	if err != nil {
		h.logger.Error().Err(err).Str("kind", string(kind)).Msg("reflect plan schema")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(schema)
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, run func(context.Context) (planner.PlanResponse, error)) {
	resp, err := run(r.Context())
	if err != nil {
		writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Result: planner.Body(resp), Mode: resp.Mode()})
}

func writeGenerationError(w http.ResponseWriter, err error) {
	var (
		invalid   *planner.InvalidInputError
		malformed *planner.MalformedPlanError
		upstream  *ai.UpstreamServiceError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "invalid_input", invalid.Error())
	case errors.As(err, &malformed):
		writeError(w, http.StatusBadGateway, "malformed_plan", "The plan service returned an unusable plan")
	case errors.As(err, &upstream):
		if errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusGatewayTimeout, "upstream_timeout", "The plan service timed out")
			return
		}
		writeError(w, http.StatusBadGateway, "upstream_error", "The plan service is unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxPreferencesBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid JSON body")
		return false
	}
	return true
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

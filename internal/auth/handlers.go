package auth

import (
	"encoding/json"
	"net/http"

	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/userctx"
)

type Handlers struct {
	config  *config.Config
	service *Service
	logger  zerolog.Logger

	// OAuth hooks, replaced in tests.
	beginAuth    func(w http.ResponseWriter, r *http.Request)
	completeAuth func(w http.ResponseWriter, r *http.Request) (goth.User, error)
	logout       func(w http.ResponseWriter, r *http.Request) error
}

func NewHandlers(cfg *config.Config, service *Service, logger zerolog.Logger) *Handlers {
	return &Handlers{
		config:       cfg,
		service:      service,
		logger:       logger.With().Str("component", "auth").Logger(),
		beginAuth:    gothic.BeginAuthHandler,
		completeAuth: gothic.CompleteUserAuth,
		logout:       gothic.Logout,
	}
}

// HandleDevAuth handles POST /v1/auth/dev
func (h *Handlers) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode != config.AuthModeDev {
		writeError(w, http.StatusNotFound, "not_enabled", "Dev sign-in is disabled")
		return
	}

	resp, err := h.service.SignInDev(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("dev sign-in failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGoogleBegin handles GET /v1/auth/google
func (h *Handlers) HandleGoogleBegin(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode != config.AuthModeGoogle {
		writeError(w, http.StatusNotFound, "not_enabled", "Google sign-in is disabled")
		return
	}
	h.beginAuth(w, withGoogleProvider(r))
}

// HandleGoogleCallback handles GET /v1/auth/google/callback
func (h *Handlers) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode != config.AuthModeGoogle {
		writeError(w, http.StatusNotFound, "not_enabled", "Google sign-in is disabled")
		return
	}

	gothUser, err := h.completeAuth(w, withGoogleProvider(r))
	if err != nil {
		h.logger.Warn().Err(err).Msg("google auth completion failed")
		writeError(w, http.StatusUnauthorized, "oauth_failed", "Google sign-in failed")
		return
	}
	if gothUser.UserID == "" {
		writeError(w, http.StatusUnauthorized, "oauth_failed", "Google account has no user id")
		return
	}

	name := gothUser.Name
	if name == "" {
		name = gothUser.NickName
	}
	resp, err := h.service.IssueToken(userctx.Identity{
		UserID:   ProviderGoogle + ":" + gothUser.UserID,
		Email:    gothUser.Email,
		Name:     name,
		Provider: ProviderGoogle,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("issue token after google sign-in")
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	h.logger.Info().Str("user_id", resp.User.UserID).Msg("google sign-in")
	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /v1/auth/me
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := userctx.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": id})
}

// HandleSignOut handles POST /v1/auth/signout. Access tokens are stateless,
// so this only clears the OAuth session cookie; clients drop the token.
func (h *Handlers) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode == config.AuthModeGoogle {
		if err := h.logout(w, r); err != nil {
			h.logger.Debug().Err(err).Msg("clear oauth session")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

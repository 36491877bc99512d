package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/userctx"
)

type Middleware struct {
	config  *config.Config
	service *Service
}

func NewMiddleware(cfg *config.Config, service *Service) *Middleware {
	return &Middleware{config: cfg, service: service}
}

// Authenticate resolves the caller for every request. A bearer token, when
// present, must be valid. With AUTH_MODE=none requests act as LocalUserID.
// With AUTH_REQUIRED=1 anonymous requests outside public paths get 401.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))

		if authHeader != "" {
			id, err := m.authenticateHeader(authHeader)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			hlog.FromRequest(r).Debug().Str("sub", id.UserID).Msg("auth token accepted")
			next.ServeHTTP(w, r.WithContext(userctx.WithIdentity(r.Context(), id)))
			return
		}

		if m.config.AuthMode == config.AuthModeNone {
			local := userctx.Identity{UserID: LocalUserID, Provider: ProviderNone}
			next.ServeHTTP(w, r.WithContext(userctx.WithIdentity(r.Context(), local)))
			return
		}

		if m.config.AuthRequired && !isPublicPath(r.URL.Path) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects requests without a caller.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userctx.GetIdentity(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Sign in to use this endpoint")
			return
		}
		next(w, r)
	}
}

func (m *Middleware) authenticateHeader(authHeader string) (userctx.Identity, error) {
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return userctx.Identity{}, ErrInvalidToken
	}
	return m.service.VerifyJWT(strings.TrimSpace(token))
}

func isPublicPath(path string) bool {
	return path == "/healthz" || path == "/metrics" || strings.HasPrefix(path, "/v1/auth/")
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/rs/zerolog"

	"github.com/fdg312/fitplan/internal/config"
)

// GoogleCallbackPath is registered with the Google OAuth client.
const GoogleCallbackPath = "/v1/auth/google/callback"

// SetupGoogle registers the goth Google provider and the cookie store that
// holds OAuth state between the redirect and the callback.
func SetupGoogle(cfg *config.Config, logger zerolog.Logger) {
	secure := !strings.HasPrefix(cfg.AppURL, "http://")

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(600)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	gothic.Store = store

	callbackURL := cfg.AppURL + GoogleCallbackPath
	goth.UseProviders(google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, callbackURL, "email", "profile"))

	logger.Info().Str("callback_url", callbackURL).Bool("secure_cookies", secure).Msg("auth: google sign-in enabled")
}

func withGoogleProvider(r *http.Request) *http.Request {
	return gothic.GetContextWithProvider(r, ProviderGoogle)
}

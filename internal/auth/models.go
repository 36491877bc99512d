package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/fdg312/fitplan/internal/userctx"
)

// TokenResponse is returned by every sign-in flow.
type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int64            `json:"expires_in"`
	User        userctx.Identity `json:"user"`
}

// Claims is the access token payload. sub holds the user id.
type Claims struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	jwt.RegisteredClaims
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

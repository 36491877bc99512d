package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fdg312/fitplan/internal/config"
	"github.com/fdg312/fitplan/internal/userctx"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	ProviderNone   = "none"
	ProviderDev    = "dev"
	ProviderGoogle = "google"

	// LocalUserID is the caller when AUTH_MODE=none.
	LocalUserID = "local"
	devUserID   = "dev-user"
)

// Service issues and verifies access tokens.
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

// SignInDev issues a 30 day token for the fixed dev user.
func (s *Service) SignInDev(_ context.Context) (*TokenResponse, error) {
	const devTTL = 30 * 24 * time.Hour
	return s.issue(userctx.Identity{UserID: devUserID, Name: "Developer", Provider: ProviderDev}, devTTL)
}

// IssueToken issues a token with the configured TTL.
func (s *Service) IssueToken(id userctx.Identity) (*TokenResponse, error) {
	return s.issue(id, time.Duration(s.config.JWTTTLMinutes)*time.Minute)
}

func (s *Service) issue(id userctx.Identity, ttl time.Duration) (*TokenResponse, error) {
	now := s.now()
	claims := Claims{
		Email:    id.Email,
		Name:     id.Name,
		Provider: id.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    s.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		User:        id,
	}, nil
}

// VerifyJWT checks signature, issuer and expiry and returns the caller.
func (s *Service) VerifyJWT(tokenString string) (userctx.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return userctx.Identity{}, ErrInvalidToken
	}

	return userctx.Identity{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Provider: claims.Provider,
	}, nil
}

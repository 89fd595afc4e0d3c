package auth

import (
	"context"
	"log/slog"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/auth"
	"github.com/ninebox-hr/ninebox-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// Subject is the identity carried by every token issued here; the service has
// a single local client.
const Subject = "ninebox-client"

type authServiceImpl struct {
	jwtService jwt.Service
	apiKeyHash []byte
}

// NewAuthService returns a service that checks API keys against a bcrypt hash.
// With an empty hash no tokens are issued.
func NewAuthService(jwtService jwt.Service, apiKeyHash string) auth.AuthService {
	return &authServiceImpl{
		jwtService: jwtService,
		apiKeyHash: []byte(apiKeyHash),
	}
}

// IssueToken implements auth.AuthService.
func (s *authServiceImpl) IssueToken(ctx context.Context, req auth.TokenRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if len(s.apiKeyHash) == 0 {
		return auth.TokenResponse{}, auth.ErrAuthDisabled
	}

	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(req.APIKey)); err != nil {
		slog.Warn("Rejected api key")
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(Subject)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// IssueStreamToken implements auth.AuthService.
func (s *authServiceImpl) IssueStreamToken(ctx context.Context, subject string) (auth.StreamTokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateStreamToken(subject)
	if err != nil {
		return auth.StreamTokenResponse{}, err
	}
	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

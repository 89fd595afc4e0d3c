package auth

import "context"

// AuthService exchanges the local API key for bearer tokens.
type AuthService interface {
	IssueToken(ctx context.Context, req TokenRequest) (TokenResponse, error)
	IssueStreamToken(ctx context.Context, subject string) (StreamTokenResponse, error)
}

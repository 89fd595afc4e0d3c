package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid api key")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAuthDisabled       = errors.New("token authentication is disabled")
)

package auth

import "github.com/ninebox-hr/ninebox-backend-go/internal/pkg/validator"

type TokenRequest struct {
	APIKey string `json:"api_key"`
}

func (r *TokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.APIKey) {
		errs = append(errs, validator.ValidationError{
			Field:   "api_key",
			Message: "api_key is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

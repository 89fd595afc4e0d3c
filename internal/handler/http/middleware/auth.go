package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/auth"
	"github.com/ninebox-hr/ninebox-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a verified access token. It expects
// jwtauth.Verifier earlier in the chain.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ninebox-hr/ninebox-backend-go/internal/domain/auth"
	"github.com/ninebox-hr/ninebox-backend-go/internal/handler/http/response"
	authService "github.com/ninebox-hr/ninebox-backend-go/internal/service/auth"
)

type TokenHandler interface {
	Issue(w http.ResponseWriter, r *http.Request)
	IssueStream(w http.ResponseWriter, r *http.Request)
}

type tokenHandlerImpl struct {
	authService auth.AuthService
}

func NewTokenHandler(authService auth.AuthService) TokenHandler {
	return &tokenHandlerImpl{authService: authService}
}

// Issue exchanges the local API key for an access token.
func (h *tokenHandlerImpl) Issue(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Token decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.authService.IssueToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// IssueStream returns a short-lived token for the event stream. Requires an access token.
func (h *tokenHandlerImpl) IssueStream(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.IssueStreamToken(r.Context(), authService.Subject)
	if err != nil {
		slog.Error("Stream token error", "error", err)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}
	response.Success(w, resp)
}

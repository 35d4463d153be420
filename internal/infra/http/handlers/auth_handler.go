package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Login interface {
	Execute(ctx context.Context, input usecase.LoginInput) (*usecase.AuthTokens, error)
}

type AuthHandler struct {
	login  Login
	logger zerolog.Logger
}

func NewAuthHandler(login Login, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{login: login, logger: logger}
}

var loginStatus = map[usecase.LoginErrorKind]int{
	usecase.LoginInvalidCredentials: http.StatusUnauthorized,
	usecase.LoginEmailNotConfirmed:  http.StatusForbidden,
	usecase.LoginRateLimited:        http.StatusTooManyRequests,
	usecase.LoginTimeout:            http.StatusGatewayTimeout,
	usecase.LoginNetwork:            http.StatusBadGateway,
	usecase.LoginGeneric:            http.StatusBadGateway,
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginInput
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.login.Execute(r.Context(), req)
	if err != nil {
		var lerr *usecase.LoginError
		if errors.As(err, &lerr) {
			writeJSON(w, loginStatus[lerr.Kind], lerr)
			return
		}
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxBodySize = 1 << 20

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

var statusByCode = map[string]int{
	usecase.CodeValidation:          http.StatusBadRequest,
	usecase.CodeNotFound:            http.StatusNotFound,
	usecase.CodeForbiddenTransition: http.StatusUnprocessableEntity,
	usecase.CodeInvalidTransition:   http.StatusConflict,
	usecase.CodeExpired:             http.StatusGone,
	usecase.CodeAlreadyResponded:    http.StatusConflict,
	usecase.CodeConflict:            http.StatusConflict,
	usecase.CodeForbidden:           http.StatusForbidden,
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError concentra o mapeamento de erro para status HTTP.
func writeUseCaseError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Details: de.Details})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logger.Error().Err(err).Str("code", te.Code).Msg("falha técnica")
		writeError(w, http.StatusInternalServerError, te.Code, te.Message)
		return
	}

	logger.Error().Err(err).Msg("erro inesperado")
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return false
	}
	return true
}

// requireSession lê a sessão posta pelo middleware. Rotas autenticadas sempre a têm.
func requireSession(w http.ResponseWriter, r *http.Request) (entity.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sessão ausente")
	}
	return sess, ok
}

package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AvatarUploader interface {
	Execute(ctx context.Context, session entity.Session, data []byte) (string, error)
}

type ProfileHandler struct {
	avatars AvatarUploader
	logger  zerolog.Logger
}

func NewProfileHandler(avatars AvatarUploader, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{avatars: avatars, logger: logger}
}

// UploadAvatar lê o campo "avatar" do multipart. Arquivo acima do limite é recusado sem chegar ao storage.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, usecase.MaxAvatarSize+64<<10)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeValidation,
			Message: "arquivo inválido",
			Details: map[string]string{"avatar": "must be a JPEG, PNG or WebP file smaller than 2MB"},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxAvatarSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "falha ao ler arquivo")
		return
	}

	url, err := h.avatars.Execute(r.Context(), session, data)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
}

package usecase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const MaxAvatarSize = 2 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UploadAvatarUseCase struct {
	Storage  AvatarStorage
	Profiles entity.ProfileRepositoryInterface
}

func NewUploadAvatarUseCase(storage AvatarStorage, profiles entity.ProfileRepositoryInterface) *UploadAvatarUseCase {
	return &UploadAvatarUseCase{Storage: storage, Profiles: profiles}
}

// Execute valida tipo e tamanho antes de enviar qualquer byte ao bucket.
// O tipo vem do conteúdo, não da extensão do arquivo.
func (uc *UploadAvatarUseCase) Execute(ctx context.Context, session entity.Session, data []byte) (string, error) {
	if session.UserID == "" {
		return "", &DomainError{Code: CodeForbidden, Message: "sessão inválida"}
	}
	if len(data) == 0 {
		return "", invalidField("avatar", "is required")
	}
	if len(data) >= MaxAvatarSize {
		return "", invalidField("avatar", "must be smaller than 2MB")
	}

	contentType := http.DetectContentType(data)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", invalidField("avatar", "must be JPEG, PNG or WebP")
	}

	key := fmt.Sprintf("avatars/%s/avatar.%s", session.UserID, ext)
	url, err := uc.Storage.Upload(ctx, key, contentType, data)
	if err != nil {
		return "", &TechnicalError{Code: CodeStorage, Message: "erro ao enviar avatar", Err: err}
	}

	if err := uc.Profiles.UpdateAvatar(ctx, session.UserID, url); err != nil {
		return "", databaseError("erro ao salvar avatar no perfil", err)
	}
	return url, nil
}

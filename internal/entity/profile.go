package entity

import "context"

type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"nome"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ProfileRepositoryInterface interface {
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
}

// Session é a identidade do usuário autenticado, passada explicitamente
// para os casos de uso.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (s Session) UserIDPtr() *string {
	if s.UserID == "" {
		return nil
	}
	id := s.UserID
	return &id
}

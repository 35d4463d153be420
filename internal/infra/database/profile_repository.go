package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var errProfileNotFound = errors.New("perfil não encontrado")

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, userID, avatarURL)
	if err != nil {
		return fmt.Errorf("erro ao atualizar avatar: %w", err)
	}
	return expectOne(res, errProfileNotFound)
}

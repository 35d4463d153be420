package usecase

import (
	"context"
	"time"
)

// Recorder recebe as métricas de domínio. Implementado por middleware.PromRecorder.
type Recorder interface {
	RecordTransition(funnel, target, outcome string)
	RecordSideEffectFailure(step string)
	RecordNotification(notificationType string)
	RecordNPSInvitation(status string)
}

type NopRecorder struct{}

func (NopRecorder) RecordTransition(string, string, string) {}
func (NopRecorder) RecordSideEffectFailure(string)          {}
func (NopRecorder) RecordNotification(string)               {}
func (NopRecorder) RecordNPSInvitation(string)              {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return NopRecorder{}
	}
	return r
}

type EmailService interface {
	SendNPSInvitation(to, subject, body string) error
}

type WhatsAppService interface {
	SendNPSInvitation(ctx context.Context, phone, clientName, link string) error
}

// AuthTokens é a resposta do provedor de autenticação no login por senha.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type AuthProvider interface {
	PasswordLogin(ctx context.Context, email, password string) (*AuthTokens, error)
}

// AvatarStorage grava o arquivo no bucket e devolve a URL pública.
type AvatarStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultLoginTimeout = 15 * time.Second

type LoginErrorKind string

const (
	LoginInvalidCredentials LoginErrorKind = "invalid_credentials"
	LoginEmailNotConfirmed  LoginErrorKind = "email_not_confirmed"
	LoginRateLimited        LoginErrorKind = "rate_limited"
	LoginTimeout            LoginErrorKind = "timeout"
	LoginNetwork            LoginErrorKind = "network"
	LoginGeneric            LoginErrorKind = "generic"
)

// LoginError é a falha de login já traduzida para a tela.
type LoginError struct {
	Kind    LoginErrorKind `json:"tipo"`
	Message string         `json:"mensagem"`
	Icon    string         `json:"icone"`
	Err     error          `json:"-"`
}

func (e *LoginError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

var loginMessages = map[LoginErrorKind]struct{ msg, icon string }{
	LoginInvalidCredentials: {"Email ou senha incorretos", "lock"},
	LoginEmailNotConfirmed:  {"Confirme seu email antes de entrar", "mail"},
	LoginRateLimited:        {"Muitas tentativas. Aguarde alguns minutos", "clock"},
	LoginTimeout:            {"O servidor demorou para responder. Tente novamente", "hourglass"},
	LoginNetwork:            {"Sem conexão com o servidor. Verifique sua internet", "wifi-off"},
	LoginGeneric:            {"Não foi possível entrar. Tente novamente", "alert"},
}

// ordem importa: a primeira regra que casar define o tipo
var loginPatterns = []struct {
	kind    LoginErrorKind
	needles []string
}{
	{LoginInvalidCredentials, []string{"invalid login credentials", "invalid credentials", "invalid_grant", "invalid_credentials"}},
	{LoginEmailNotConfirmed, []string{"email not confirmed", "email_not_confirmed"}},
	{LoginRateLimited, []string{"rate limit", "too many requests", "over_request_rate_limit"}},
	{LoginTimeout, []string{"timeout", "deadline exceeded", "timed out"}},
	{LoginNetwork, []string{"network", "failed to fetch", "connection refused", "no such host", "connection reset"}},
}

// ClassifyLoginError mapeia o erro do provedor pelo texto da mensagem.
func ClassifyLoginError(err error) *LoginError {
	kind := LoginGeneric
	if errors.Is(err, context.DeadlineExceeded) {
		kind = LoginTimeout
	} else {
		text := strings.ToLower(err.Error())
	match:
		for _, p := range loginPatterns {
			for _, n := range p.needles {
				if strings.Contains(text, n) {
					kind = p.kind
					break match
				}
			}
		}
	}

	m := loginMessages[kind]
	return &LoginError{Kind: kind, Message: m.msg, Icon: m.icon, Err: err}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginUseCase struct {
	Provider AuthProvider
	Timeout  time.Duration
	Logger   zerolog.Logger
}

func NewLoginUseCase(provider AuthProvider, timeout time.Duration, logger zerolog.Logger) *LoginUseCase {
	return &LoginUseCase{Provider: provider, Timeout: timeout, Logger: logger}
}

// Execute corre o login contra um timer fixo. Não há retry automático.
func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*AuthTokens, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	timeout := uc.Timeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tokens, err := uc.Provider.PasswordLogin(ctx, input.Email, input.Password)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errors.Join(err, context.DeadlineExceeded)
		}
		lerr := ClassifyLoginError(err)
		uc.Logger.Warn().Str("kind", string(lerr.Kind)).Str("email", input.Email).Err(err).Msg("login falhou")
		return nil, lerr
	}
	return tokens, nil
}

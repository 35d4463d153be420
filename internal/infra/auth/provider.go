package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// PasswordClient faz o password grant no provedor de autenticação (API estilo GoTrue).
type PasswordClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewPasswordClient(baseURL, apiKey string) *PasswordClient {
	return &PasswordClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{},
	}
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type providerError struct {
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e providerError) text() string {
	parts := []string{}
	for _, s := range []string{e.ErrorCode, e.Error, e.ErrorDescription, e.Msg, e.Message} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ": ")
}

// PasswordLogin devolve o texto de erro do provedor intacto para a classificação no caso de uso.
// O timeout vem do contexto.
func (c *PasswordClient) PasswordLogin(ctx context.Context, email, password string) (*usecase.AuthTokens, error) {
	body, err := json.Marshal(passwordGrant{Email: email, Password: password})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "network")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "network")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.New("too many requests")
	}
	if resp.StatusCode >= 300 {
		var perr providerError
		if json.Unmarshal(raw, &perr) == nil && perr.text() != "" {
			return nil, errors.New(perr.text())
		}
		return nil, fmt.Errorf("auth provider status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, errors.Wrap(err, "resposta inválida do provedor")
	}
	return &usecase.AuthTokens{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
		UserID:       tr.User.ID,
		Email:        tr.User.Email,
	}, nil
}

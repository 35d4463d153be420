package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://graph.facebook.com/v18.0"

var ErrNotConfigured = errors.New("whatsapp não configurado")

type Client struct {
	accessToken string
	phoneID     string
	template    string
	baseURL     string
	http        *http.Client
	logger      zerolog.Logger
}

func NewClient(accessToken, phoneID, templateName string, logger zerolog.Logger) *Client {
	return &Client{
		accessToken: accessToken,
		phoneID:     phoneID,
		template:    templateName,
		baseURL:     DefaultBaseURL,
		http:        &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// SendNPSInvitation usa o template aprovado com dois parâmetros: nome e link.
func (c *Client) SendNPSInvitation(ctx context.Context, phone, clientName, link string) error {
	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: c.template,
		Parameters:   []string{clientName, link},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if c.accessToken == "" || c.phoneID == "" {
		return ErrNotConfigured
	}

	to := NormalizePhone(input.PhoneNumber)
	if to == "" {
		return errors.Errorf("telefone inválido: %q", input.PhoneNumber)
	}

	params := make([]parameter, 0, len(input.Parameters))
	for _, p := range input.Parameters {
		params = append(params, parameter{Type: "text", Text: p})
	}
	payload := templateMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "template",
		Template: template{
			Name:       input.TemplateName,
			Language:   language{Code: "pt_BR"},
			Components: []component{{Type: "body", Parameters: params}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "serializar payload")
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "criar requisição")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "enviar mensagem")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var result SendMessageResponse
	decodeErr := json.Unmarshal(respBody, &result)

	if result.Error != nil {
		return errors.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("whatsapp api error: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		c.logger.Warn().Err(decodeErr).Int("status", resp.StatusCode).Msg("resposta do whatsapp ilegível")
		return errors.Wrap(decodeErr, "decodificar resposta")
	}
	if len(result.Messages) == 0 {
		return errors.New("whatsapp: resposta sem id de mensagem")
	}

	c.logger.Info().Str("to", to).Str("template", input.TemplateName).Str("message_id", result.Messages[0].ID).Msg("whatsapp enviado")
	return nil
}

// NormalizePhone mantém só dígitos e prefixa 55 em números nacionais.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 10 || len(digits) == 11:
		return "55" + digits
	case len(digits) == 12 || len(digits) == 13:
		return digits
	default:
		return ""
	}
}

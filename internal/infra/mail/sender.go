package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var npsLayout = template.Must(template.New("nps").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>{{.Subject}}</h2>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
  <p style="font-size: 12px; color: #6b7280;">Você recebeu este email porque é cliente da Ligue.</p>
</body>
</html>`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// SendNPSInvitation envia o convite já com o template preenchido. Cada linha do corpo vira um parágrafo.
func (s *EmailSender) SendNPSInvitation(to, subject, body string) error {
	html, err := renderNPS(subject, body)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

func renderNPS(subject, body string) (string, error) {
	data := npsEmailData{Subject: subject}
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			data.Paragraphs = append(data.Paragraphs, line)
		}
	}

	var out bytes.Buffer
	if err := npsLayout.Execute(&out, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return out.String(), nil
}

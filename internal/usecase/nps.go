package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NPSSendError struct {
	ClientID string `json:"cliente_id"`
	Error    string `json:"erro"`
}

type NPSSendOutput struct {
	Success bool           `json:"success"`
	Sent    int            `json:"enviados"`
	Errors  []NPSSendError `json:"erros"`
	Message string         `json:"message,omitempty"`
}

// SendNPSInvitationsUseCase gera convites para clientes elegíveis. Email e
// WhatsApp são opcionais: sem canal configurado o convite só fica gravado.
type SendNPSInvitationsUseCase struct {
	NPS       entity.NPSRepositoryInterface
	Clients   entity.ClientRepositoryInterface
	Email     EmailService
	WhatsApp  WhatsAppService
	PublicURL string
	Metrics   Recorder
	Logger    zerolog.Logger
	Now       func() time.Time
}

func NewSendNPSInvitationsUseCase(
	nps entity.NPSRepositoryInterface,
	clients entity.ClientRepositoryInterface,
	email EmailService,
	whatsapp WhatsAppService,
	publicURL string,
	metrics Recorder,
	logger zerolog.Logger,
) *SendNPSInvitationsUseCase {
	return &SendNPSInvitationsUseCase{
		NPS:       nps,
		Clients:   clients,
		Email:     email,
		WhatsApp:  whatsapp,
		PublicURL: publicURL,
		Metrics:   metrics,
		Logger:    logger,
	}
}

func (uc *SendNPSInvitationsUseCase) Execute(ctx context.Context) (*NPSSendOutput, error) {
	now := clock(uc.Now).now()
	out := &NPSSendOutput{Success: true, Errors: []NPSSendError{}}

	cfg, err := uc.NPS.GetConfig(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrNPSConfigNotFound) {
			out.Message = "NPS não configurado"
			return out, nil
		}
		return nil, databaseError("erro ao ler configuração de NPS", err)
	}
	if !cfg.Enabled {
		out.Message = "NPS desativado"
		return out, nil
	}

	candidates, err := uc.Clients.ListNPSCandidates(ctx)
	if err != nil {
		return nil, databaseError("erro ao buscar clientes", err)
	}

	metrics := orNop(uc.Metrics)
	for _, cand := range candidates {
		if !entity.IsEligibleForNPS(cand.Client, cand.LastInviteAt, now, cfg.FrequencyMonths) {
			continue
		}
		if err := uc.invite(ctx, cfg, cand.Client, now); err != nil {
			metrics.RecordNPSInvitation("falha")
			uc.Logger.Warn().Err(err).Str("client_id", cand.Client.ID).Msg("falha ao enviar convite NPS")
			out.Errors = append(out.Errors, NPSSendError{ClientID: cand.Client.ID, Error: err.Error()})
			continue
		}
		metrics.RecordNPSInvitation("enviado")
		out.Sent++
	}

	uc.Logger.Info().Int("sent", out.Sent).Int("failed", len(out.Errors)).Msg("envio de NPS finalizado")
	return out, nil
}

// invite grava o convite e tenta os canais disponíveis. Conta como falha só
// se nenhum canal tentado entregou.
func (uc *SendNPSInvitationsUseCase) invite(ctx context.Context, cfg *entity.NPSConfig, c entity.Client, now time.Time) error {
	inv := entity.NewNPSInvitation(c.ID, now)
	if err := uc.NPS.CreateInvitation(ctx, inv); err != nil {
		return fmt.Errorf("erro ao criar convite: %w", err)
	}

	link := uc.SurveyLink(inv.Token)
	var attempted, delivered int
	var errs []string

	if uc.Email != nil && c.Email != "" {
		attempted++
		subject := entity.RenderTemplate(cfg.EmailSubject, c.Name, link)
		body := entity.RenderTemplate(cfg.EmailBody, c.Name, link)
		if err := uc.Email.SendNPSInvitation(c.Email, subject, body); err != nil {
			errs = append(errs, "email: "+err.Error())
		} else {
			delivered++
		}
	}

	if uc.WhatsApp != nil && c.Phone != "" {
		attempted++
		if err := uc.WhatsApp.SendNPSInvitation(ctx, c.Phone, c.Name, link); err != nil {
			errs = append(errs, "whatsapp: "+err.Error())
		} else {
			delivered++
		}
	}

	if attempted > 0 && delivered == 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (uc *SendNPSInvitationsUseCase) SurveyLink(token string) string {
	return strings.TrimRight(uc.PublicURL, "/") + "/" + token
}

type SubmitNPSInput struct {
	Token   string `json:"-" validate:"required"`
	Score   *int   `json:"nota" validate:"required,gte=0,lte=10"`
	Comment string `json:"comentario" validate:"max=2000"`
}

// NPSSurveyUseCase atende o link público da pesquisa.
type NPSSurveyUseCase struct {
	NPS    entity.NPSRepositoryInterface
	Logger zerolog.Logger
	Now    func() time.Time
}

func NewNPSSurveyUseCase(nps entity.NPSRepositoryInterface, logger zerolog.Logger) *NPSSurveyUseCase {
	return &NPSSurveyUseCase{NPS: nps, Logger: logger}
}

// Get resolve o token para exibir o formulário.
func (uc *NPSSurveyUseCase) Get(ctx context.Context, token string) (*entity.NPSInvitation, error) {
	inv, err := uc.find(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := inv.CheckSubmittable(clock(uc.Now).now()); err != nil {
		return nil, invitationError(err)
	}
	return inv, nil
}

// Submit grava a resposta. Expiração é checada antes do uso único.
func (uc *NPSSurveyUseCase) Submit(ctx context.Context, input SubmitNPSInput) (*entity.NPSResponse, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	inv, err := uc.find(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	now := clock(uc.Now).now()
	if err := inv.CheckSubmittable(now); err != nil {
		return nil, invitationError(err)
	}

	resp, err := entity.NewNPSResponse(inv, *input.Score, input.Comment)
	if err != nil {
		return nil, invalidField("nota", err.Error())
	}

	recorded, err := uc.NPS.RecordResponse(ctx, resp, now)
	if err != nil {
		return nil, databaseError("erro ao gravar resposta", err)
	}
	if !recorded {
		return nil, invitationError(entity.ErrAlreadyResponded)
	}

	uc.Logger.Info().Str("invitation_id", inv.ID).Int("score", resp.Score).Msg("resposta NPS registrada")
	return resp, nil
}

func (uc *NPSSurveyUseCase) find(ctx context.Context, token string) (*entity.NPSInvitation, error) {
	if strings.TrimSpace(token) == "" {
		return nil, notFound(entity.ErrInvitationNotFound)
	}
	inv, err := uc.NPS.FindInvitationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, entity.ErrInvitationNotFound) {
			return nil, notFound(err)
		}
		return nil, databaseError("erro ao buscar convite", err)
	}
	return inv, nil
}

func invitationError(err error) *DomainError {
	code := CodeValidation
	switch {
	case errors.Is(err, entity.ErrInvitationExpired):
		code = CodeExpired
	case errors.Is(err, entity.ErrAlreadyResponded):
		code = CodeAlreadyResponded
	}
	return &DomainError{Code: code, Message: err.Error(), Err: err}
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/funnel"
)

// Confirmation carrega os dados do modal. Cada destino usa só os seus campos.
type Confirmation struct {
	// agendamento
	ScheduledAt *time.Time `json:"data_agendamento,omitempty"`
	CloserID    *string    `json:"closer_responsavel_id,omitempty"`

	// fechamento
	Confirmed      bool             `json:"confirmado,omitempty"`
	DealValue      *decimal.Decimal `json:"valor_venda,omitempty"`
	CollaboratorID *string          `json:"colaborador_id,omitempty"`

	// perda
	LossReasonID *string `json:"motivo_perda_id,omitempty"`
	MoveToFrios  bool    `json:"mover_para_frios,omitempty"`

	// reativação
	TargetFunnel entity.Funnel `json:"funil_destino,omitempty"`
	TargetStage  entity.Stage  `json:"etapa_destino,omitempty"`

	// descarte
	DiscardReason *string `json:"motivo_descarte,omitempty"`

	Notes string `json:"observacoes,omitempty"`
}

type MoveLeadStageInput struct {
	Session entity.Session
	LeadID  string `validate:"required"`
	// Funnel é o quadro de onde o card saiu. Vazio aceita o funil atual do lead.
	Funnel       entity.Funnel `validate:"omitempty,funnel"`
	Target       entity.Stage  `validate:"required"`
	Confirmation *Confirmation
}

type MoveOutcome string

const (
	OutcomeNoop    MoveOutcome = "noop"
	OutcomePending MoveOutcome = "pendente"
	OutcomeApplied MoveOutcome = "efetivada"
)

type MoveLeadStageOutput struct {
	Outcome          MoveOutcome        `json:"resultado"`
	Lead             *entity.Lead       `json:"lead"`
	Pending          *funnel.InputSpec  `json:"confirmacao,omitempty"`
	FollowUp         *entity.FollowUp   `json:"follow_up,omitempty"`
	Meeting          *entity.Meeting    `json:"reuniao,omitempty"`
	Client           *entity.Client     `json:"cliente,omitempty"`
	Commission       *entity.Commission `json:"comissao,omitempty"`
	SideEffectErrors []StepError        `json:"erros_efeitos,omitempty"`
}

type MoveLeadStageUseCase struct {
	Leads          entity.LeadRepositoryInterface
	FollowUps      entity.FollowUpRepositoryInterface
	Activities     entity.ActivityRepositoryInterface
	Meetings       entity.MeetingRepositoryInterface
	Clients        entity.ClientRepositoryInterface
	Commissions    entity.CommissionRepositoryInterface
	Notifier       *Notifier
	CommissionRate decimal.Decimal
	MeetingLength  time.Duration
	Metrics        Recorder
	Logger         zerolog.Logger
	Now            func() time.Time
}

func NewMoveLeadStageUseCase(
	leads entity.LeadRepositoryInterface,
	followUps entity.FollowUpRepositoryInterface,
	activities entity.ActivityRepositoryInterface,
	meetings entity.MeetingRepositoryInterface,
	clients entity.ClientRepositoryInterface,
	commissions entity.CommissionRepositoryInterface,
	notifier *Notifier,
	commissionRate decimal.Decimal,
	metrics Recorder,
	logger zerolog.Logger,
) *MoveLeadStageUseCase {
	return &MoveLeadStageUseCase{
		Leads:          leads,
		FollowUps:      followUps,
		Activities:     activities,
		Meetings:       meetings,
		Clients:        clients,
		Commissions:    commissions,
		Notifier:       notifier,
		CommissionRate: commissionRate,
		MeetingLength:  time.Hour,
		Metrics:        metrics,
		Logger:         logger,
	}
}

var funnelLabel = map[entity.Funnel]string{
	entity.FunnelSDR:    "SDR",
	entity.FunnelCloser: "Closer",
	entity.FunnelFrios:  "Frios",
}

func (uc *MoveLeadStageUseCase) Execute(ctx context.Context, input MoveLeadStageInput) (*MoveLeadStageOutput, error) {
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	lead, err := uc.Leads.FindByID(ctx, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound(err)
		}
		return nil, databaseError("erro ao buscar lead", err)
	}

	if input.Funnel != "" && input.Funnel != lead.Funnel {
		return nil, &DomainError{
			Code:    CodeConflict,
			Message: fmt.Sprintf("lead está no funil %s, não em %s", lead.Funnel, input.Funnel),
		}
	}

	metrics := orNop(uc.Metrics)
	d := funnel.Decide(lead.Funnel, lead.Stage(), input.Target)

	switch d.Kind {
	case funnel.Noop:
		metrics.RecordTransition(string(lead.Funnel), string(input.Target), string(OutcomeNoop))
		return &MoveLeadStageOutput{Outcome: OutcomeNoop, Lead: lead}, nil
	case funnel.Forbidden:
		metrics.RecordTransition(string(lead.Funnel), string(input.Target), "proibida")
		return nil, &DomainError{Code: CodeForbiddenTransition, Message: d.Reason}
	case funnel.RequiresConfirmation:
		if input.Confirmation == nil {
			metrics.RecordTransition(string(lead.Funnel), string(input.Target), string(OutcomePending))
			return &MoveLeadStageOutput{Outcome: OutcomePending, Lead: lead, Pending: d.Input}, nil
		}
	}

	t := &transition{
		uc:      uc,
		session: input.Session,
		from:    lead.Funnel,
		target:  input.Target,
		conf:    input.Confirmation,
		now:     clock(uc.Now).now(),
		out:     &MoveLeadStageOutput{Outcome: OutcomeApplied},
	}
	if t.conf == nil {
		t.conf = &Confirmation{}
	}

	updated := *lead
	if err := t.apply(&updated); err != nil {
		return nil, err
	}
	t.lead = &updated
	t.out.Lead = t.lead

	steps := NewSteps()
	steps.Primary("atualizar_lead", func(ctx context.Context) error {
		return uc.Leads.Update(ctx, t.lead)
	})
	for _, e := range d.Effect {
		t.schedule(steps, e)
	}

	failed, err := steps.Execute(ctx)
	if err != nil {
		metrics.RecordTransition(string(t.from), string(t.target), "erro")
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound(entity.ErrLeadNotFound)
		}
		return nil, databaseError("erro ao atualizar lead", err)
	}

	for _, f := range failed {
		metrics.RecordSideEffectFailure(f.Step)
		uc.Logger.Warn().
			Str("lead_id", t.lead.ID).
			Str("step", f.Step).
			Str("error", f.Err).
			Msg("efeito derivado da transição falhou")
	}
	t.out.SideEffectErrors = failed

	metrics.RecordTransition(string(t.from), string(t.target), string(OutcomeApplied))
	uc.Logger.Info().
		Str("lead_id", t.lead.ID).
		Str("from_funnel", string(t.from)).
		Str("target", string(t.target)).
		Str("funnel", string(t.lead.Funnel)).
		Str("stage", string(t.lead.Stage())).
		Msg("lead movido")

	return t.out, nil
}

// transition guarda o estado de uma movimentação em andamento.
type transition struct {
	uc      *MoveLeadStageUseCase
	session entity.Session
	from    entity.Funnel
	target  entity.Stage
	conf    *Confirmation
	now     time.Time
	lead    *entity.Lead
	out     *MoveLeadStageOutput

	activity string
}

// apply valida a confirmação e aplica no lead as mudanças da escrita principal.
func (t *transition) apply(l *entity.Lead) error {
	c := t.conf
	if c.Notes != "" {
		l.Notes = appendNote(l.Notes, c.Notes)
	}

	switch {
	case t.from == entity.FunnelSDR && t.target == entity.StageReuniaoAgendada:
		var errs []ValidationError
		if c.ScheduledAt == nil || c.ScheduledAt.IsZero() {
			errs = append(errs, ValidationError{Field: "data_agendamento", Message: "is required"})
		}
		if c.CloserID == nil || strings.TrimSpace(*c.CloserID) == "" {
			errs = append(errs, ValidationError{Field: "closer_responsavel_id", Message: "is required"})
		}
		if len(errs) > 0 {
			return validationFailed(errs)
		}
		at := c.ScheduledAt.UTC()
		closer := *c.CloserID
		l.ScheduledAt = &at
		l.CloserID = &closer
		return l.MoveTo(entity.FunnelCloser, entity.StageReuniaoAgendada)

	case t.from == entity.FunnelCloser && t.target == entity.StageFechadoGanho:
		if !c.Confirmed {
			return invalidField("confirmado", "must be true")
		}
		if c.DealValue == nil || !c.DealValue.IsPositive() {
			return invalidField("valor_venda", "must be positive")
		}
		v := *c.DealValue
		l.EstimatedValue = &v
		return l.MoveTo(entity.FunnelCloser, entity.StageFechadoGanho)

	case t.from == entity.FunnelCloser && t.target == entity.StagePerdido:
		if c.LossReasonID == nil || strings.TrimSpace(*c.LossReasonID) == "" {
			return invalidField("motivo_perda_id", "is required")
		}
		reason := *c.LossReasonID
		lostAt := t.now
		l.LossReasonID = &reason
		l.LostAt = &lostAt
		if c.MoveToFrios {
			t.activity = "Lead marcado como perdido e movido para o funil Frios"
			return l.MoveTo(entity.FunnelFrios, entity.FunnelFrios.InitialStage())
		}
		return l.MoveTo(entity.FunnelCloser, entity.StagePerdido)

	case t.from == entity.FunnelFrios && t.target == entity.StageReativado:
		if err := funnel.ReactivationTarget(c.TargetFunnel, c.TargetStage); err != nil {
			return invalidField("etapa_destino", err.Error())
		}
		l.Reactivations++
		t.activity = "Lead reativado e direcionado ao funil " + funnelLabel[c.TargetFunnel]
		return l.MoveTo(c.TargetFunnel, c.TargetStage)

	case t.target == entity.StageDescartado:
		if c.DiscardReason != nil && strings.TrimSpace(*c.DiscardReason) != "" {
			reason := strings.TrimSpace(*c.DiscardReason)
			l.DiscardReason = &reason
			t.activity = "Lead descartado: " + reason
		}
		return l.MoveTo(t.from, entity.StageDescartado)
	}

	return l.MoveTo(t.from, t.target)
}

// schedule registra a escrita derivada correspondente ao efeito.
func (t *transition) schedule(steps *Steps, e funnel.Effect) {
	uc := t.uc
	switch e.Kind {
	case funnel.EffectFollowUp:
		steps.BestEffort("criar_follow_up", func(ctx context.Context) error {
			f := entity.NewFollowUp(t.lead.ID, t.now.Add(e.After), e.Description, t.session.UserIDPtr())
			if err := uc.FollowUps.Create(ctx, f); err != nil {
				return fmt.Errorf("erro ao criar follow-up: %w", err)
			}
			t.out.FollowUp = f
			return nil
		})

	case funnel.EffectActivity:
		desc := e.Description
		if t.activity != "" {
			desc = t.activity
		}
		steps.BestEffort("registrar_atividade", func(ctx context.Context) error {
			a := entity.NewActivity(t.lead.ID, t.session.UserIDPtr(), desc)
			if err := uc.Activities.Create(ctx, a); err != nil {
				return fmt.Errorf("erro ao registrar atividade: %w", err)
			}
			return nil
		})

	case funnel.EffectMeeting:
		steps.BestEffort("criar_reuniao", t.createMeeting)
		steps.BestEffort("notificar_closer", t.notifyCloser)

	case funnel.EffectClient:
		steps.BestEffort("converter_cliente", func(ctx context.Context) error {
			client := entity.NewClientFromLead(t.lead, t.now)
			if err := uc.Clients.Create(ctx, client); err != nil {
				return fmt.Errorf("erro ao converter lead em cliente: %w", err)
			}
			t.out.Client = client
			return nil
		})

	case funnel.EffectCommission:
		steps.BestEffort("criar_comissao", t.createCommission)
	}
}

func (t *transition) createMeeting(ctx context.Context) error {
	length := t.uc.MeetingLength
	if length <= 0 {
		length = time.Hour
	}

	closer := *t.lead.CloserID
	organizer := t.session.UserID
	if organizer == "" {
		organizer = closer
	}

	start := *t.lead.ScheduledAt
	m, err := entity.NewMeeting("Reunião com "+t.lead.Name, organizer, start, start.Add(length), []string{closer, t.session.UserID})
	if err != nil {
		return err
	}
	leadID := t.lead.ID
	m.LeadID = &leadID

	if err := t.uc.Meetings.Create(ctx, m); err != nil {
		return fmt.Errorf("erro ao criar reunião: %w", err)
	}
	t.out.Meeting = m
	return nil
}

func (t *transition) notifyCloser(ctx context.Context) error {
	if t.uc.Notifier == nil || t.lead.CloserID == nil || *t.lead.CloserID == t.session.UserID {
		return nil
	}
	link := "/leads/" + t.lead.ID
	ref := t.lead.ID
	n := entity.NewNotification(
		*t.lead.CloserID,
		entity.NotificationLeadAssigned,
		"Novo lead atribuído",
		fmt.Sprintf("Reunião agendada com %s em %s", t.lead.Name, t.lead.ScheduledAt.Format("02/01/2006 15:04")),
		&link,
		&ref,
	)
	return t.uc.Notifier.Notify(ctx, n)
}

func (t *transition) createCommission(ctx context.Context) error {
	collaborator := t.session.UserID
	switch {
	case t.conf.CollaboratorID != nil && *t.conf.CollaboratorID != "":
		collaborator = *t.conf.CollaboratorID
	case t.lead.CloserID != nil && *t.lead.CloserID != "":
		collaborator = *t.lead.CloserID
	}

	c, err := entity.NewCommission(t.lead.ID, collaborator, *t.lead.EstimatedValue, t.uc.CommissionRate)
	if err != nil {
		return err
	}
	if t.out.Client != nil {
		id := t.out.Client.ID
		c.ClientID = &id
	}

	if err := t.uc.Commissions.Create(ctx, c); err != nil {
		return fmt.Errorf("erro ao criar comissão: %w", err)
	}
	t.out.Commission = c
	return nil
}

func appendNote(current, note string) string {
	note = strings.TrimSpace(note)
	if current == "" {
		return note
	}
	return current + "\n" + note
}

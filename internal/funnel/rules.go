// Package funnel contém a tabela de transições de etapa dos funis SDR, Closer e Frios.
//
// Decide é pura: não lê nem grava nada. Quem aplica a decisão é
// usecase.MoveLeadStageUseCase.
package funnel

import (
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type DecisionKind string

const (
	Noop                 DecisionKind = "noop"
	Direct               DecisionKind = "direct"
	RequiresConfirmation DecisionKind = "requires_confirmation"
	Forbidden            DecisionKind = "forbidden"
)

// InputKind identifica qual modal a UI precisa abrir antes de confirmar.
type InputKind string

const (
	InputSchedule   InputKind = "agendamento"
	InputCloseWon   InputKind = "fechamento"
	InputLoss       InputKind = "perda"
	InputReactivate InputKind = "reativacao"
	InputDiscard    InputKind = "descarte"
)

type Field struct {
	Name     string `json:"nome"`
	Required bool   `json:"obrigatorio"`
}

type InputSpec struct {
	Kind   InputKind `json:"tipo"`
	Fields []Field   `json:"campos"`
}

type EffectKind string

const (
	EffectFollowUp      EffectKind = "follow_up"
	EffectActivity      EffectKind = "atividade"
	EffectMeeting       EffectKind = "reuniao"
	EffectClient        EffectKind = "cliente"
	EffectCommission    EffectKind = "comissao"
	EffectFunnelChange  EffectKind = "troca_funil"
	EffectReactivations EffectKind = "contador_reativacao"
)

// Effect descreve uma escrita derivada da transição.
type Effect struct {
	Kind        EffectKind
	After       time.Duration // só para follow-up
	Description string
}

type Decision struct {
	Kind   DecisionKind
	Input  *InputSpec
	Effect []Effect
	Reason string
}

type rule struct {
	input   *InputSpec
	effects []Effect
}

const (
	ProposalFollowUpDescription     = "Fazer follow-up da proposta enviada"
	ReactivationFollowUpDescription = "Tentar reativação do lead"
)

// Destinos com regras especiais. Qualquer outra etapa válida do funil é Direct sem efeitos.
var rules = map[entity.Funnel]map[entity.Stage]rule{
	entity.FunnelSDR: {
		entity.StageReuniaoAgendada: {
			input: &InputSpec{Kind: InputSchedule, Fields: []Field{
				{Name: "data_agendamento", Required: true},
				{Name: "closer_responsavel_id", Required: true},
				{Name: "observacoes"},
			}},
			effects: []Effect{
				{Kind: EffectFunnelChange},
				{Kind: EffectMeeting},
				{Kind: EffectActivity, Description: "Reunião agendada e lead transferido para o funil Closer"},
			},
		},
		entity.StageDescartado: discardRule,
	},
	entity.FunnelCloser: {
		entity.StagePropostaEnviada: {
			effects: []Effect{
				{Kind: EffectFollowUp, After: 2 * 24 * time.Hour, Description: ProposalFollowUpDescription},
			},
		},
		entity.StageFechadoGanho: {
			input: &InputSpec{Kind: InputCloseWon, Fields: []Field{
				{Name: "confirmado", Required: true},
				{Name: "valor_venda", Required: true},
				{Name: "colaborador_id"},
				{Name: "observacoes"},
			}},
			effects: []Effect{
				{Kind: EffectClient},
				{Kind: EffectCommission},
				{Kind: EffectActivity, Description: "Negócio fechado e lead convertido em cliente"},
			},
		},
		entity.StagePerdido: {
			input: &InputSpec{Kind: InputLoss, Fields: []Field{
				{Name: "motivo_perda_id", Required: true},
				{Name: "mover_para_frios"},
				{Name: "observacoes"},
			}},
			effects: []Effect{
				{Kind: EffectActivity, Description: "Lead marcado como perdido"},
			},
		},
	},
	entity.FunnelFrios: {
		entity.StageReativacao: {
			effects: []Effect{
				{Kind: EffectFollowUp, After: 15 * 24 * time.Hour, Description: ReactivationFollowUpDescription},
			},
		},
		entity.StageReativado: {
			input: &InputSpec{Kind: InputReactivate, Fields: []Field{
				{Name: "funil_destino", Required: true},
				{Name: "etapa_destino", Required: true},
				{Name: "observacoes"},
			}},
			effects: []Effect{
				{Kind: EffectFunnelChange},
				{Kind: EffectReactivations},
				{Kind: EffectActivity},
			},
		},
		entity.StageDescartado: discardRule,
	},
}

var discardRule = rule{
	input: &InputSpec{Kind: InputDiscard, Fields: []Field{
		{Name: "motivo_descarte"},
	}},
	effects: []Effect{
		{Kind: EffectActivity, Description: "Lead descartado"},
	},
}

// Etapas finais: não saem mais do lugar pelo kanban.
var terminal = map[entity.Funnel]map[entity.Stage]bool{
	entity.FunnelSDR:    {entity.StageDescartado: true},
	entity.FunnelCloser: {entity.StageFechadoGanho: true, entity.StagePerdido: true},
	entity.FunnelFrios:  {entity.StageDescartado: true},
}

// Decide classifica a transição (funnel, from) -> to.
func Decide(f entity.Funnel, from, to entity.Stage) Decision {
	if !f.Valid() {
		return Decision{Kind: Forbidden, Reason: fmt.Sprintf("funil desconhecido: %q", f)}
	}
	if from == to {
		return Decision{Kind: Noop}
	}
	if !f.HasStage(to) {
		return Decision{Kind: Forbidden, Reason: fmt.Sprintf("etapa %q não existe no funil %s", to, f)}
	}
	if terminal[f][from] {
		return Decision{Kind: Forbidden, Reason: fmt.Sprintf("etapa %q é final", from)}
	}

	r, ok := rules[f][to]
	if !ok {
		return Decision{Kind: Direct}
	}

	d := Decision{Kind: Direct, Effect: append([]Effect(nil), r.effects...)}
	if r.input != nil {
		d.Kind = RequiresConfirmation
		in := *r.input
		in.Fields = append([]Field(nil), r.input.Fields...)
		d.Input = &in
	}
	return d
}

// IsTerminal indica se a etapa encerra o lead dentro do funil.
func IsTerminal(f entity.Funnel, s entity.Stage) bool {
	return terminal[f][s]
}

// IsTransferColumn indica colunas onde o lead nunca permanece: ao soltar ali,
// ele muda de funil.
func IsTransferColumn(f entity.Funnel, s entity.Stage) bool {
	return (f == entity.FunnelSDR && s == entity.StageReuniaoAgendada) ||
		(f == entity.FunnelFrios && s == entity.StageReativado)
}

// ReactivationTarget valida o destino escolhido no modal de reativação.
func ReactivationTarget(f entity.Funnel, s entity.Stage) error {
	if f != entity.FunnelSDR && f != entity.FunnelCloser {
		return fmt.Errorf("%w: reativação só pode ir para sdr ou closer", entity.ErrInvalidFunnel)
	}
	if !f.HasStage(s) {
		return entity.ErrStageNotInFunnel
	}
	if IsTerminal(f, s) || IsTransferColumn(f, s) {
		return fmt.Errorf("etapa %q não pode ser destino de reativação", s)
	}
	return nil
}

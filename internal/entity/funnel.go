package entity

import "fmt"

// Funnel identifica o funil em que o lead está. Um lead pertence a exatamente um funil.
type Funnel string

const (
	FunnelSDR    Funnel = "sdr"
	FunnelCloser Funnel = "closer"
	FunnelFrios  Funnel = "frios"
)

// Stage é a etapa dentro de um funil. O mesmo valor pode existir em mais de um
// funil (ex: reuniao_agendada, descartado), por isso a validade depende do funil.
type Stage string

const (
	// SDR
	StageNovo             Stage = "novo"
	StageTentativaContato Stage = "tentativa_contato"
	StageEmContato        Stage = "em_contato"
	StageQualificado      Stage = "qualificado"
	StageReuniaoAgendada  Stage = "reuniao_agendada"
	StageDescartado       Stage = "descartado"

	// Closer
	StageReuniaoRealizada Stage = "reuniao_realizada"
	StagePropostaEnviada  Stage = "proposta_enviada"
	StageNegociacao       Stage = "negociacao"
	StageFechadoGanho     Stage = "fechado_ganho"
	StagePerdido          Stage = "perdido"

	// Frios
	StageEsfriar    Stage = "esfriar"
	StageNutricao   Stage = "nutricao"
	StageReativacao Stage = "reativacao"
	StageReativado  Stage = "reativado"
)

// Ordem das colunas no kanban.
var funnelStages = map[Funnel][]Stage{
	FunnelSDR: {
		StageNovo, StageTentativaContato, StageEmContato, StageQualificado,
		StageReuniaoAgendada, StageDescartado,
	},
	FunnelCloser: {
		StageReuniaoAgendada, StageReuniaoRealizada, StagePropostaEnviada,
		StageNegociacao, StageFechadoGanho, StagePerdido,
	},
	FunnelFrios: {
		StageEsfriar, StageNutricao, StageReativacao, StageReativado, StageDescartado,
	},
}

func ParseFunnel(s string) (Funnel, error) {
	f := Funnel(s)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFunnel, s)
	}
	return f, nil
}

func (f Funnel) Valid() bool {
	_, ok := funnelStages[f]
	return ok
}

// Stages retorna uma cópia das etapas do funil, na ordem do kanban.
func (f Funnel) Stages() []Stage {
	stages := funnelStages[f]
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

func (f Funnel) HasStage(s Stage) bool {
	for _, st := range funnelStages[f] {
		if st == s {
			return true
		}
	}
	return false
}

// InitialStage é a etapa de entrada do funil.
func (f Funnel) InitialStage() Stage {
	stages := funnelStages[f]
	if len(stages) == 0 {
		return ""
	}
	return stages[0]
}

func (s Stage) Ptr() *Stage {
	return &s
}

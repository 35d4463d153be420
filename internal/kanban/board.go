// Package kanban monta os quadros por funil e aplica movimentações de card
// com atualização otimista do cache da lista de leads.
package kanban

import "github.com/xavierca1/ligue-crm/internal/entity"

type Column struct {
	Stage entity.Stage  `json:"etapa"`
	Leads []entity.Lead `json:"leads"`
}

type Board struct {
	Funnel  entity.Funnel `json:"funil"`
	Columns []Column      `json:"colunas"`
}

// GroupByStage distribui os leads nas colunas do funil numa passada só,
// preservando a ordem de entrada. Leads de outro funil ou sem etapa válida
// ficam de fora.
func GroupByStage(f entity.Funnel, leads []entity.Lead) Board {
	stages := f.Stages()
	board := Board{Funnel: f, Columns: make([]Column, len(stages))}

	index := make(map[entity.Stage]int, len(stages))
	for i, s := range stages {
		board.Columns[i] = Column{Stage: s, Leads: []entity.Lead{}}
		index[s] = i
	}

	for _, l := range leads {
		if l.Funnel != f {
			continue
		}
		i, ok := index[l.Stage()]
		if !ok {
			continue
		}
		board.Columns[i].Leads = append(board.Columns[i].Leads, l)
	}
	return board
}

// ApplyStage devolve uma cópia da lista com o lead leadID movido para (f, s).
// A lista original não é alterada.
func ApplyStage(leads []entity.Lead, leadID string, f entity.Funnel, s entity.Stage) []entity.Lead {
	out := make([]entity.Lead, len(leads))
	copy(out, leads)
	for i := range out {
		if out[i].ID != leadID {
			continue
		}
		l := out[i]
		if err := l.MoveTo(f, s); err == nil {
			out[i] = l
		}
	}
	return out
}

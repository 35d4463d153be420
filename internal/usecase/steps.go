package usecase

import (
	"context"
	"fmt"
)

// Steps executa escritas em sequência, sem transação no banco.
// As primárias abortam na primeira falha. As best-effort rodam depois e só
// acumulam erros: o que já foi gravado não é desfeito.
type Steps struct {
	primary    []Operation
	bestEffort []Operation
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type StepError struct {
	Step string `json:"etapa"`
	Err  string `json:"erro"`
}

func NewSteps() *Steps {
	return &Steps{}
}

func (s *Steps) Primary(name string, fn func(context.Context) error) {
	s.primary = append(s.primary, Operation{name, fn})
}

func (s *Steps) BestEffort(name string, fn func(context.Context) error) {
	s.bestEffort = append(s.bestEffort, Operation{name, fn})
}

// Execute retorna erro apenas se uma operação primária falhar; nesse caso
// nenhuma best-effort roda.
func (s *Steps) Execute(ctx context.Context) ([]StepError, error) {
	for _, op := range s.primary {
		if err := op.Fn(ctx); err != nil {
			return nil, fmt.Errorf("operation '%s' failed: %w", op.Name, err)
		}
	}

	var failed []StepError
	for _, op := range s.bestEffort {
		if err := op.Fn(ctx); err != nil {
			failed = append(failed, StepError{Step: op.Name, Err: err.Error()})
		}
	}
	return failed, nil
}

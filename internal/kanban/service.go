package kanban

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/querycache"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadLister interface {
	ListByFunnel(ctx context.Context, f entity.Funnel) ([]entity.Lead, error)
}

type Mover interface {
	Execute(ctx context.Context, input usecase.MoveLeadStageInput) (*usecase.MoveLeadStageOutput, error)
}

// BoardService serve os quadros a partir do cache e aplica movimentações
// de forma otimista: reescreve o cache antes da escrita no banco e restaura
// o snapshot se ela falhar.
type BoardService struct {
	leads  LeadLister
	mover  Mover
	cache  *querycache.Cache[[]entity.Lead]
	logger zerolog.Logger
}

func NewBoardService(leads LeadLister, mover Mover, store querycache.Store, ttl time.Duration, logger zerolog.Logger) *BoardService {
	c := querycache.New[[]entity.Lead](store, "leads", ttl)
	c.OnRefreshError = func(key string, err error) {
		logger.Warn().Err(err).Str("funnel", key).Msg("falha ao gravar quadro no cache")
	}
	return &BoardService{
		leads:  leads,
		mover:  mover,
		cache:  c,
		logger: logger,
	}
}

func (s *BoardService) Leads(ctx context.Context, f entity.Funnel) ([]entity.Lead, error) {
	return s.cache.Fetch(ctx, string(f), func(ctx context.Context) ([]entity.Lead, error) {
		return s.leads.ListByFunnel(ctx, f)
	})
}

func (s *BoardService) Board(ctx context.Context, f entity.Funnel) (Board, error) {
	leads, err := s.Leads(ctx, f)
	if err != nil {
		return Board{}, err
	}
	return GroupByStage(f, leads), nil
}

// Move executa a transição dentro do protocolo snapshot -> apply -> commit | revert
// sobre a lista do funil de origem. Falhas do cache só são logadas.
func (s *BoardService) Move(ctx context.Context, input usecase.MoveLeadStageInput) (*usecase.MoveLeadStageOutput, error) {
	if !input.Funnel.Valid() {
		out, err := s.mover.Execute(ctx, input)
		if err == nil && out.Outcome == usecase.OutcomeApplied {
			for _, f := range []entity.Funnel{entity.FunnelSDR, entity.FunnelCloser, entity.FunnelFrios} {
				s.invalidate(ctx, f)
			}
		}
		return out, err
	}

	key := string(input.Funnel)
	m, err := querycache.Begin(ctx, s.cache, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("funnel", key).Msg("cache indisponível, movendo sem atualização otimista")
		m = nil
	}
	if m != nil {
		if err := m.Apply(ctx, func(leads []entity.Lead) []entity.Lead {
			return ApplyStage(leads, input.LeadID, input.Funnel, input.Target)
		}); err != nil {
			s.logger.Warn().Err(err).Str("funnel", key).Msg("falha ao aplicar atualização otimista")
		}
	}

	out, err := s.mover.Execute(ctx, input)
	if err != nil || out.Outcome == usecase.OutcomePending {
		if m != nil {
			if rerr := m.Revert(ctx); rerr != nil {
				s.logger.Warn().Err(rerr).Str("funnel", key).Msg("falha ao restaurar snapshot")
			}
		}
		return out, err
	}

	if m != nil {
		if cerr := m.Commit(ctx); cerr != nil {
			s.logger.Warn().Err(cerr).Str("funnel", key).Msg("falha ao invalidar cache")
		}
	}
	if out.Lead != nil && out.Lead.Funnel != input.Funnel {
		s.invalidate(ctx, out.Lead.Funnel)
	}
	return out, nil
}

// Invalidate marca o quadro do funil como desatualizado, para ser chamado
// depois de escritas fora do Move (cadastro e captura de leads).
func (s *BoardService) Invalidate(ctx context.Context, f entity.Funnel) {
	s.invalidate(ctx, f)
}

func (s *BoardService) invalidate(ctx context.Context, f entity.Funnel) {
	if err := s.cache.Invalidate(ctx, string(f)); err != nil {
		s.logger.Warn().Err(err).Str("funnel", string(f)).Msg("falha ao invalidar cache")
	}
}

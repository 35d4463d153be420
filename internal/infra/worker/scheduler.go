package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job é uma rotina periódica. Run roda uma vez ao iniciar e depois a cada Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger zerolog.Logger
}

func NewScheduler(logger zerolog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger}
}

// Start bloqueia até o contexto ser cancelado e todos os jobs pararem.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		if job.Interval <= 0 || job.Run == nil {
			s.logger.Warn().Str("job", job.Name).Msg("job ignorado: intervalo ou função ausente")
			continue
		}
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(job)
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j Job) {
	log := s.logger.With().Str("job", j.Name).Dur("interval", j.Interval).Logger()
	log.Info().Msg("job agendado")

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	s.runOnce(ctx, j, log)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("job encerrado")
			return
		case <-ticker.C:
			s.runOnce(ctx, j, log)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j Job, log zerolog.Logger) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("job falhou com panic")
		}
	}()
	if err := j.Run(ctx); err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("job falhou")
		return
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("job executado")
}

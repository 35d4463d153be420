package worker

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type jobOutputRunner interface {
	Execute(ctx context.Context) (*usecase.JobOutput, error)
}

type npsRunner interface {
	Execute(ctx context.Context) (*usecase.NPSSendOutput, error)
}

func TasksDueJob(uc jobOutputRunner, interval time.Duration) Job {
	return Job{Name: "tarefas_vencendo", Interval: interval, Run: discardOutput(uc)}
}

func MeetingRemindersJob(uc jobOutputRunner, interval time.Duration) Job {
	return Job{Name: "lembretes_reuniao", Interval: interval, Run: discardOutput(uc)}
}

func NPSJob(uc npsRunner, interval time.Duration) Job {
	return Job{
		Name:     "nps",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := uc.Execute(ctx)
			return err
		},
	}
}

func discardOutput(uc jobOutputRunner) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := uc.Execute(ctx)
		return err
	}
}

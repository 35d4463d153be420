package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	TaskDueWindow         = 24 * time.Hour
	MeetingReminderWindow = time.Hour

	ItemNotified        = "notificado"
	ItemAlreadyNotified = "ja_notificado"
	ItemFailed          = "erro"
)

type JobItemResult struct {
	ID     string `json:"id"`
	UserID string `json:"usuario_id"`
	Status string `json:"status"`
	Error  string `json:"erro,omitempty"`
}

type JobOutput struct {
	Success bool            `json:"success"`
	Results []JobItemResult `json:"resultados"`
}

func (o *JobOutput) add(r JobItemResult) {
	o.Results = append(o.Results, r)
}

// Count devolve quantos itens terminaram com o status informado.
func (o *JobOutput) Count(status string) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// NotifyTasksDueUseCase avisa o responsável por tarefas que vencem nas próximas 24h.
// A deduplicação é só a consulta antes do insert: duas execuções simultâneas
// podem gerar notificação duplicada.
type NotifyTasksDueUseCase struct {
	Tasks         entity.TaskRepositoryInterface
	Notifications entity.NotificationRepositoryInterface
	Notifier      *Notifier
	Logger        zerolog.Logger
	Now           func() time.Time
}

func NewNotifyTasksDueUseCase(tasks entity.TaskRepositoryInterface, notifications entity.NotificationRepositoryInterface, notifier *Notifier, logger zerolog.Logger) *NotifyTasksDueUseCase {
	return &NotifyTasksDueUseCase{Tasks: tasks, Notifications: notifications, Notifier: notifier, Logger: logger}
}

func (uc *NotifyTasksDueUseCase) Execute(ctx context.Context) (*JobOutput, error) {
	now := clock(uc.Now).now()

	tasks, err := uc.Tasks.ListDueBetween(ctx, now, now.Add(TaskDueWindow))
	if err != nil {
		return nil, databaseError("erro ao buscar tarefas", err)
	}

	out := &JobOutput{Success: true, Results: []JobItemResult{}}
	for _, task := range tasks {
		if task.AssigneeID == nil || task.DueAt == nil {
			continue
		}
		res := JobItemResult{ID: task.ID, UserID: *task.AssigneeID}

		exists, err := uc.Notifications.ExistsSince(ctx, *task.AssigneeID, entity.NotificationTaskDue, task.ID, now.Add(-TaskDueWindow))
		if err != nil {
			res.Status, res.Error = ItemFailed, err.Error()
			uc.Logger.Warn().Err(err).Str("task_id", task.ID).Msg("falha ao verificar notificação existente")
			out.add(res)
			continue
		}
		if exists {
			res.Status = ItemAlreadyNotified
			out.add(res)
			continue
		}

		hours := int(task.DueAt.Sub(now).Hours())
		link := "/tarefas"
		ref := task.ID
		n := entity.NewNotification(
			*task.AssigneeID,
			entity.NotificationTaskDue,
			"Tarefa próxima do vencimento",
			fmt.Sprintf("A tarefa \"%s\" vence em %d horas", task.Title, hours),
			&link,
			&ref,
		)
		if err := uc.Notifier.Notify(ctx, n); err != nil {
			res.Status, res.Error = ItemFailed, err.Error()
			uc.Logger.Warn().Err(err).Str("task_id", task.ID).Msg("falha ao notificar tarefa")
			out.add(res)
			continue
		}
		res.Status = ItemNotified
		out.add(res)
	}

	uc.Logger.Info().
		Int("tasks", len(tasks)).
		Int("notified", out.Count(ItemNotified)).
		Int("failed", out.Count(ItemFailed)).
		Msg("job de tarefas vencendo finalizado")
	return out, nil
}

// NotifyMeetingRemindersUseCase lembra cada participante de reuniões que começam
// na próxima hora. Um participante recebe no máximo um lembrete por reunião.
type NotifyMeetingRemindersUseCase struct {
	Meetings      entity.MeetingRepositoryInterface
	Notifications entity.NotificationRepositoryInterface
	Notifier      *Notifier
	Logger        zerolog.Logger
	Now           func() time.Time
}

func NewNotifyMeetingRemindersUseCase(meetings entity.MeetingRepositoryInterface, notifications entity.NotificationRepositoryInterface, notifier *Notifier, logger zerolog.Logger) *NotifyMeetingRemindersUseCase {
	return &NotifyMeetingRemindersUseCase{Meetings: meetings, Notifications: notifications, Notifier: notifier, Logger: logger}
}

func (uc *NotifyMeetingRemindersUseCase) Execute(ctx context.Context) (*JobOutput, error) {
	now := clock(uc.Now).now()

	meetings, err := uc.Meetings.ListScheduledBetween(ctx, now, now.Add(MeetingReminderWindow))
	if err != nil {
		return nil, databaseError("erro ao buscar reuniões", err)
	}

	out := &JobOutput{Success: true, Results: []JobItemResult{}}
	for _, m := range meetings {
		minutes := int(m.StartsAt.Sub(now).Minutes())

		for _, p := range m.Participants {
			res := JobItemResult{ID: m.ID, UserID: p.UserID}

			exists, err := uc.Notifications.Exists(ctx, p.UserID, entity.NotificationMeetingReminder, m.ID)
			if err != nil {
				res.Status, res.Error = ItemFailed, err.Error()
				uc.Logger.Warn().Err(err).Str("meeting_id", m.ID).Str("user_id", p.UserID).Msg("falha ao verificar lembrete existente")
				out.add(res)
				continue
			}
			if exists {
				res.Status = ItemAlreadyNotified
				out.add(res)
				continue
			}

			link := "/agenda"
			ref := m.ID
			n := entity.NewNotification(
				p.UserID,
				entity.NotificationMeetingReminder,
				"Lembrete de reunião",
				fmt.Sprintf("A reunião \"%s\" começa em %d minutos", m.Title, minutes),
				&link,
				&ref,
			)
			if err := uc.Notifier.Notify(ctx, n); err != nil {
				res.Status, res.Error = ItemFailed, err.Error()
				uc.Logger.Warn().Err(err).Str("meeting_id", m.ID).Str("user_id", p.UserID).Msg("falha ao criar lembrete")
				out.add(res)
				continue
			}
			res.Status = ItemNotified
			out.add(res)
		}
	}

	uc.Logger.Info().
		Int("meetings", len(meetings)).
		Int("notified", out.Count(ItemNotified)).
		Int("failed", out.Count(ItemFailed)).
		Msg("job de lembretes de reunião finalizado")
	return out, nil
}

package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type JobRunner interface {
	Execute(ctx context.Context) (*usecase.JobOutput, error)
}

type NPSRunner interface {
	Execute(ctx context.Context) (*usecase.NPSSendOutput, error)
}

// JobsHandler expõe os jobs para um cron externo. Falha geral responde 500 com success=false.
type JobsHandler struct {
	tasksDue  JobRunner
	reminders JobRunner
	nps       NPSRunner
	logger    zerolog.Logger
}

func NewJobsHandler(tasksDue, reminders JobRunner, nps NPSRunner, logger zerolog.Logger) *JobsHandler {
	return &JobsHandler{tasksDue: tasksDue, reminders: reminders, nps: nps, logger: logger}
}

type jobFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *JobsHandler) TasksDue(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, "tarefas_vencendo", h.tasksDue)
}

func (h *JobsHandler) MeetingReminders(w http.ResponseWriter, r *http.Request) {
	h.runJob(w, r, "lembretes_reuniao", h.reminders)
}

func (h *JobsHandler) NPS(w http.ResponseWriter, r *http.Request) {
	out, err := h.nps.Execute(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("job", "nps").Msg("job falhou")
		writeJSON(w, http.StatusInternalServerError, jobFailure{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JobsHandler) runJob(w http.ResponseWriter, r *http.Request, name string, job JobRunner) {
	out, err := job.Execute(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Str("job", name).Msg("job falhou")
		writeJSON(w, http.StatusInternalServerError, jobFailure{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

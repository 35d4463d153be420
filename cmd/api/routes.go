package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type routes struct {
	origins       []string
	cronSecret    string
	publicLimit   int
	tokens        middleware.TokenParser
	logger        zerolog.Logger
	health        *handlers.HealthHandler
	leads         *handlers.LeadHandler
	history       *handlers.HistoryHandler
	commissions   *handlers.CommissionHandler
	meetings      *handlers.MeetingHandler
	notifications *handlers.NotificationHandler
	nps           *handlers.NPSHandler
	jobs          *handlers.JobsHandler
	auth          *handlers.AuthHandler
	profile       *handlers.ProfileHandler
}

func (rt routes) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	public := middleware.NewRateLimiter(rt.publicLimit, time.Minute)
	r.Route("/public", func(r chi.Router) {
		r.Use(public.Middleware)
		r.Post("/leads", rt.leads.CaptureLead)
		r.Get("/nps/{token}", rt.nps.Get)
		r.Post("/nps/{token}", rt.nps.Submit)
	})

	r.With(public.Middleware).Post("/auth/login", rt.auth.Login)

	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.CronSecret(rt.cronSecret))
		r.Post("/tarefas-vencendo", rt.jobs.TasksDue)
		r.Post("/lembretes-reuniao", rt.jobs.MeetingReminders)
		r.Post("/nps", rt.jobs.NPS)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(rt.tokens))

		r.Post("/leads", rt.leads.Create)
		r.Get("/funnels/{funnel}/board", rt.leads.Board)
		r.Post("/leads/{id}/stage", rt.leads.MoveStage)
		r.Get("/leads/{id}/follow-ups", rt.history.FollowUps)
		r.Get("/leads/{id}/activities", rt.history.Activities)
		r.Post("/follow-ups/{id}/complete", rt.history.CompleteFollowUp)

		r.Get("/commissions", rt.commissions.List)
		r.Post("/commissions/approve", rt.commissions.Approve)
		r.Post("/commissions/pay", rt.commissions.Pay)
		r.Post("/commissions/cancel", rt.commissions.Cancel)

		r.Patch("/meetings/{id}/status", rt.meetings.UpdateStatus)
		r.Post("/meetings/{id}/confirm", rt.meetings.Confirm)

		r.Get("/notifications", rt.notifications.List)
		r.Post("/notifications/read-all", rt.notifications.MarkAllRead)
		r.Patch("/notifications/{id}/read", rt.notifications.SetRead)
		r.Get("/ws/notifications", rt.notifications.Stream)

		if rt.profile != nil {
			r.Post("/profile/avatar", rt.profile.UploadAvatar)
		}
	})

	return r
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/auth"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/realtime"
	"github.com/xavierca1/ligue-crm/internal/infra/storage"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/kanban"
	"github.com/xavierca1/ligue-crm/internal/logger"
	"github.com/xavierca1/ligue-crm/internal/querycache"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("configuração inválida")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("falha ao conectar no banco")
	}
	defer db.Close()

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	followUpRepo := database.NewFollowUpRepository(db)
	activityRepo := database.NewActivityRepository(db)
	meetingRepo := database.NewMeetingRepository(db)
	clientRepo := database.NewClientRepository(db)
	commissionRepo := database.NewCommissionRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	taskRepo := database.NewTaskRepository(db)
	npsRepo := database.NewNPSRepository(db)
	profileRepo := database.NewProfileRepository(db)

	// 2. Cache do quadro
	var boardStore querycache.Store = cache.NewMemory()
	var redisPinger handlers.Pinger
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis indisponível no boot, seguindo com ele mesmo assim")
		}
		boardStore = rc
		redisPinger = rc
	}

	// 3. Tempo real: via RabbitMQ quando configurado, senão direto no hub
	hub := realtime.NewHub(32, log)
	var publisher entity.NotificationPublisher = hub
	var rabbitState handlers.ConnectionState
	if cfg.RabbitMQURL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao conectar no RabbitMQ")
		}
		defer rmq.Close()

		queueName, err := rmq.DeclareInstanceQueue()
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao declarar fila da instância")
		}
		consumerCh, err := rmq.Conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao abrir canal de consumo")
		}
		go func() {
			if err := queue.NewWorker(consumerCh, hub, log).Start(ctx, queueName); err != nil {
				log.Error().Err(err).Msg("worker de notificações parou")
			}
		}()

		publisher = queue.NewProducer(rmq.Ch)
		rabbitState = rmq
	}

	// 4. Canais externos
	var emailSvc usecase.EmailService
	if cfg.SMTPEnabled() {
		emailSvc = mail.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	}
	var whatsappSvc usecase.WhatsAppService
	if cfg.WhatsAppEnabled() {
		whatsappSvc = whatsapp.NewClient(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, cfg.WhatsAppTemplate, log)
	}

	// 5. UseCases
	metrics := middleware.PromRecorder{}
	rate, _ := cfg.Rate()
	notifier := usecase.NewNotifier(notificationRepo, publisher, metrics, log)

	moveUC := usecase.NewMoveLeadStageUseCase(
		leadRepo, followUpRepo, activityRepo, meetingRepo, clientRepo, commissionRepo,
		notifier, rate, metrics, log,
	)
	board := kanban.NewBoardService(leadRepo, moveUC, boardStore, cfg.BoardCacheTTL, log)
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, activityRepo, log)
	historyUC := usecase.NewLeadHistoryUseCase(followUpRepo, activityRepo)
	commissionsUC := usecase.NewCommissionsUseCase(commissionRepo, log)
	meetingsUC := usecase.NewMeetingsUseCase(meetingRepo)
	notificationsUC := usecase.NewNotificationsUseCase(notificationRepo)
	tasksDueUC := usecase.NewNotifyTasksDueUseCase(taskRepo, notificationRepo, notifier, log)
	remindersUC := usecase.NewNotifyMeetingRemindersUseCase(meetingRepo, notificationRepo, notifier, log)
	sendNPSUC := usecase.NewSendNPSInvitationsUseCase(npsRepo, clientRepo, emailSvc, whatsappSvc, cfg.NPSPublicURL, metrics, log)
	surveyUC := usecase.NewNPSSurveyUseCase(npsRepo, log)
	loginUC := usecase.NewLoginUseCase(auth.NewPasswordClient(cfg.AuthURL, cfg.AuthAPIKey), cfg.LoginTimeout, log)

	var profileHandler *handlers.ProfileHandler
	if cfg.StorageEnabled() {
		avatars, err := storage.NewS3Storage(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao configurar storage")
		}
		profileHandler = handlers.NewProfileHandler(usecase.NewUploadAvatarUseCase(avatars, profileRepo), log)
	}

	// 6. Scheduler opcional (alternativa ao cron externo em /jobs)
	if cfg.SchedulerEnabled {
		sched := worker.NewScheduler(log,
			worker.TasksDueJob(tasksDueUC, cfg.TaskDueInterval),
			worker.MeetingRemindersJob(remindersUC, cfg.MeetingReminderInterval),
			worker.NPSJob(sendNPSUC, cfg.NPSInterval),
		)
		go sched.Start(ctx)
	}

	// 7. Router
	router := routes{
		origins:       cfg.Origins(),
		cronSecret:    cfg.CronSecret,
		publicLimit:   cfg.RateLimitPublic,
		tokens:        auth.NewManager(cfg.JWTSecret, ""),
		logger:        log,
		health:        handlers.NewHealthHandler(db, rabbitState, redisPinger),
		leads:         handlers.NewLeadHandler(createLeadUC, board, log),
		history:       handlers.NewHistoryHandler(historyUC, log),
		commissions:   handlers.NewCommissionHandler(commissionsUC, log),
		meetings:      handlers.NewMeetingHandler(meetingsUC, log),
		notifications: handlers.NewNotificationHandler(notificationsUC, realtime.NewWSHandler(hub, cfg.Origins()), log),
		nps:           handlers.NewNPSHandler(surveyUC, log),
		jobs:          handlers.NewJobsHandler(tasksDueUC, remindersUC, sendNPSUC, log),
		auth:          handlers.NewAuthHandler(loginUC, log),
		profile:       profileHandler,
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           router.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddr).Msg("servidor Ligue CRM no ar")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("servidor parou")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("encerrando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown forçado")
	}
}


package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"

	"github.com/usercreator005/ff-india-tournaments-sub000/config"
	"github.com/usercreator005/ff-india-tournaments-sub000/db"
	"github.com/usercreator005/ff-india-tournaments-sub000/handlers"
	"github.com/usercreator005/ff-india-tournaments-sub000/notifications"
	"github.com/usercreator005/ff-india-tournaments-sub000/realtime"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
	api "github.com/usercreator005/ff-india-tournaments-sub000/routes"
	"github.com/usercreator005/ff-india-tournaments-sub000/services"
	"github.com/usercreator005/ff-india-tournaments-sub000/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Загрузчик файлов: Cloudflare R2, либо noop без ключей.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		uploader = storage.NewNoopUploader(logger)
		logger.Warn("R2 credentials not set, file storage disabled")
	}

	// Нотификатор: Resend, либо noop без ключа.
	var notifier notifications.Notifier
	if cfg.ResendAPIKey != "" {
		notifier, err = notifications.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendFromEmail)
		if err != nil {
			logger.Error("failed to initialize Resend notifier", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Resend notifier initialized")
	} else {
		notifier = notifications.NewNoopNotifier(logger)
		logger.Warn("RESEND_API_KEY not set, reminder delivery disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	lobbyRepo := repositories.NewPostgresLobbyRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRoomRepo := repositories.NewPostgresMatchRoomRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	stageResultRepo := repositories.NewPostgresStageResultRepository(dbConn)
	scoringRepo := repositories.NewPostgresScoringRepository(dbConn)
	walletRepo := repositories.NewPostgresWalletRepository(dbConn)
	paymentRepo := repositories.NewPostgresPaymentProofRepository(dbConn)
	reminderRepo := repositories.NewPostgresReminderRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	tournamentService := services.NewTournamentService(tournamentRepo, scoringRepo, lobbyRepo)
	teamService := services.NewTeamService(teamRepo)
	slotService := services.NewSlotService(txRunner, tournamentRepo, lobbyRepo, teamRepo)
	resultService := services.NewResultService(matchRoomRepo, resultRepo, scoringRepo, wsHub, logger)
	stageService := services.NewStageService(txRunner, matchRoomRepo, resultRepo, stageResultRepo, lobbyRepo, wsHub, logger)
	matchRoomService := services.NewMatchRoomService(txRunner, matchRoomRepo, tournamentRepo, lobbyRepo, teamRepo, resultRepo, wsHub)
	walletService := services.NewWalletService(txRunner, walletRepo)
	paymentService := services.NewPaymentService(paymentRepo, uploader, walletService, logger)
	reminderService := services.NewReminderService(reminderRepo, notifier, logger, cfg.ReminderBatchSize)
	logger.Info("Services initialized")

	// Планировщик напоминаний
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.ReminderInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ReminderInterval)
			defer cancel()

			sent, err := reminderService.ProcessDueReminders(ctx, time.Now())
			if err != nil {
				logger.Error("reminder batch failed", slog.Any("error", err))
				return
			}
			if sent > 0 {
				logger.Info("reminders sent", slog.Int("count", sent))
			}
		}),
	)
	if err != nil {
		logger.Error("failed to schedule reminder job", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("failed to shut down scheduler", slog.Any("error", err))
		}
	}()
	logger.Info("reminder scheduler started", slog.Duration("interval", cfg.ReminderInterval))

	// Инициализация обработчиков HTTP
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	slotHandler := handlers.NewSlotHandler(slotService)
	resultHandler := handlers.NewResultHandler(resultService)
	stageHandler := handlers.NewStageHandler(stageService)
	matchRoomHandler := handlers.NewMatchRoomHandler(matchRoomService)
	walletHandler := handlers.NewWalletHandler(walletService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reminderHandler := handlers.NewReminderHandler(reminderService)
	teamHandler := handlers.NewTeamHandler(teamService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		tournamentHandler,
		slotHandler,
		resultHandler,
		stageHandler,
		matchRoomHandler,
		walletHandler,
		paymentHandler,
		reminderHandler,
		teamHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/api"
	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/events"
	job "github.com/maheshrc27/postflow-studio/internal/jobs"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/queue"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
	"github.com/maheshrc27/postflow-studio/pkg/utils"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if cfg.SecretKey == "" {
		secret, err := utils.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate a secret key: %v", err)
		}
		cfg.SecretKey = secret
		slog.Warn("SECRET_KEY is not set; using a random key, sessions will not survive a restart")
	}

	ctx := context.Background()

	store, err := repository.NewStorage(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore(store)

	backend, err := client.New(client.Options{BaseURL: cfg.APIBaseURL, Timeout: cfg.RequestTimeout})
	if err != nil {
		log.Fatalf("Invalid API_BASE_URL: %v", err)
	}

	mediaStore, err := newMediaStore(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to open media store: %v", err)
	}

	hub := events.NewHub()
	workspaces := service.NewWorkspaces(nil)
	sessions := repository.NewSessionRepository(store, cfg.SecretKey, cfg.SessionTTL)

	mediaService := service.NewMediaService(mediaStore)
	authService := service.NewAuthService(backend, sessions)
	directoryService := service.NewDirectoryService(backend, nil)
	historyService := service.NewHistoryService(backend, mediaService, nil)
	keyService := service.NewKeyService(backend, hub)
	composerService := service.NewComposerService(backend, mediaService, func(ws *service.Workspace) {
		hub.Publish(events.Event{Type: events.PostScheduled, SessionID: ws.SessionID})
	})
	connectService := service.NewConnectService(
		backend,
		directoryService,
		repository.NewConnectRepository(store),
		service.HandoffLauncher{},
		cfg.Connect,
		nil,
		// Every decided attempt refreshes the account list, found or not.
		func(ctx context.Context, attempt *models.ConnectAttempt, dir models.Directory) {
			if ws, ok := workspaces.Get(attempt.SessionID); ok {
				ws.SetDirectory(dir)
			}
			hub.Publish(events.Event{Type: events.AccountsChanged, SessionID: attempt.SessionID})
		})

	// Connect watchers run on asynq when Redis is configured so they survive
	// a restart of the web process.
	var asynqServer *asynq.Server
	if cfg.RedisURI != "" {
		redisConn, err := redisClientOpt(cfg.RedisURI)
		if err != nil {
			log.Fatalf("Invalid REDIS_URI: %v", err)
		}
		asynqClient := asynq.NewClient(redisConn)
		defer asynqClient.Close()

		queueW := queue.NewQueue(asynqClient, connectService, cfg.SecretKey, cfg.Connect.Timeout)
		connectService.UseRunner(queueW)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})
		go func() {
			log.Println("Starting the Asynq server...")
			if err := asynqServer.Run(queueW.Mux()); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    1024 * 1024 * 1024, // 1 GB, the largest accepted video
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	api.Register(app, *cfg, api.Services{
		Sessions:   sessions,
		Workspaces: workspaces,
		Hub:        hub,
		Auth:       authService,
		Directory:  directoryService,
		Connect:    connectService,
		Composer:   composerService,
		History:    historyService,
		Keys:       keyService,
		Media:      mediaService,
	})

	// cron jobs
	sweepJob := job.NewSessionSweepJob(store, sessions, workspaces, mediaService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", sweepJob.Sweep)
	c.Start()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on %s", cfg.ListenAddr)

	gracefulShutdown(app, c, asynqServer)
}

func newMediaStore(ctx context.Context, cfg config.Config) (service.MediaStore, error) {
	if cfg.R2.Enabled() {
		slog.Info("staging media in R2", "bucket", cfg.R2.BucketName)
		return service.NewR2Store(ctx, cfg.R2)
	}
	return service.NewLocalStore(cfg.MediaDir + string(os.PathSeparator) + "postflow-media")
}

func redisClientOpt(uri string) (asynq.RedisClientOpt, error) {
	opt, err := repository.RedisOptions(uri)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func closeStore(store repository.Storage) {
	fmt.Fprint(os.Stdout, "Closing storage... ")
	if err := store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close storage: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, asynqServer *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()
	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	log.Println("Server shutdown complete.")
}

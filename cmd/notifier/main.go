package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lms-notify/internal/gateway"
	"github.com/noah-isme/lms-notify/internal/handler"
	"github.com/noah-isme/lms-notify/internal/middleware"
	"github.com/noah-isme/lms-notify/internal/repository"
	"github.com/noah-isme/lms-notify/internal/service"
	"github.com/noah-isme/lms-notify/pkg/cache"
	"github.com/noah-isme/lms-notify/pkg/config"
	"github.com/noah-isme/lms-notify/pkg/database"
	"github.com/noah-isme/lms-notify/pkg/jobs"
	"github.com/noah-isme/lms-notify/pkg/logger"
	reqidmiddleware "github.com/noah-isme/lms-notify/pkg/middleware/requestid"
	"github.com/noah-isme/lms-notify/pkg/timefmt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer rdb.Close()

	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	courses := repository.NewCourseRepository(db)
	runs := repository.NewRunRepository(db)
	activities := repository.NewActivityRepository(db)
	submissions := repository.NewSubmissionRepository(db)

	metrics := service.NewMetricsService()
	resolver := service.NewContextResolver(activities, runs, groups, users, logr)
	recipients := service.NewRecipientService(groups, courses, users, submissions, logr)
	dispatcher := service.NewDispatchService(
		gateway.NewHTTPPushGateway(cfg.Push),
		gateway.NewSMTPEmailGateway(cfg.SMTP),
		metrics,
		logr,
	)
	content := service.NewContentBuilder(timefmt.NewFormatter(cfg.Display.Timezone))

	var notifier *service.NotifierService
	queue := jobs.NewQueue("notify", func(ctx context.Context, task jobs.Task) error {
		return notifier.HandleTask(ctx, task)
	}, jobs.QueueConfig{
		Workers:    cfg.Scheduler.WorkerConcurrency,
		MaxRetries: cfg.Scheduler.WorkerRetries,
		Logger:     logr,
	})
	scheduler := service.NewScheduleService(rdb, queue, cfg.Scheduler.PollInterval, cfg.Scheduler.DedupeTTL, logr)
	notifier = service.NewNotifierService(resolver, recipients, dispatcher, content, scheduler, metrics, validator.New(), logr)
	tokens := service.NewTokenService(cfg.JWT)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	scheduler.Start(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db, rdb)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	notify := handler.NewNotifyHandler(notifier)
	internal := r.Group("/internal/notify", middleware.ServiceAuth(tokens))
	internal.POST("/deadline", notify.ScheduleDeadline)
	internal.POST("/activity-posted", notify.ActivityPosted)
	internal.POST("/score-published", notify.ScorePublished)
	internal.POST("/document-uploaded", notify.DocumentUploaded)
	internal.POST("/run-finalized", notify.RunFinalized)
	internal.POST("/redo-enabled", notify.RedoEnabled)
	internal.POST("/group-member-added", notify.GroupMemberAdded)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	scheduler.Stop()
	queue.Stop()
}

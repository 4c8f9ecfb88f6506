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

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/device"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/handler"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/middleware"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/cache"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/logger"
	corsmiddleware "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/middleware/cors"
	reqidmiddleware "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/middleware/requestid"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/storage"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, live events and preferences disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	photos, err := storage.NewLocalStorage(cfg.Photos.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("photo storage init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Photos.SignedURLSecret, cfg.Photos.SignedURLTTL)

	var bus *service.RedisBus
	var publisher service.Publisher
	if redisClient != nil {
		bus = service.NewRedisBus(redisClient, cfg.Redis.Channel, logr)
		publisher = bus
	}

	api := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	validate := validator.New()

	metrics := service.NewMetricsService()
	schedule := service.NewScheduleService(cfg.Schedule, logr)
	dashboards := service.NewDashboardService(api, schedule, publisher, cfg.Bounds, cfg.Dashboard.CacheTTL, logr)
	geofence := service.NewGeofenceService(cfg.Geofence, metrics, logr)
	capture := service.NewCaptureService(device.NewRemoteCamera(), metrics, logr)
	submits := service.NewSubmitService(api, cfg.Submit, logr)
	submits.Start(ctx)
	defer submits.Stop()

	sessions := service.NewSessionService(geofence, capture, photos, signer, dashboards, submits, publisher, metrics, validate, logr)
	exports := service.NewExportService(dashboards, logr)
	prefs := service.NewPreferenceService(redisClient, logr)
	tokens := service.NewTokenService(cfg.JWT.Secret)

	if bus != nil {
		live := service.NewLiveService(bus, dashboards, logr)
		go func() {
			if err := live.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logr.Sugar().Errorw("live listener stopped", "error", err)
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	dashboardHandler := handler.NewDashboardHandler(dashboards)
	sessionHandler := handler.NewSessionHandler(sessions)
	exportHandler := handler.NewExportHandler(exports, photos, signer)
	preferenceHandler := handler.NewPreferenceHandler(prefs)

	apiGroup := r.Group(cfg.APIPrefix)
	apiGroup.GET("/photos", exportHandler.Photo)

	authed := apiGroup.Group("")
	authed.Use(middleware.JWT(tokens))
	{
		authed.GET("/notices", dashboardHandler.Notices)
		authed.GET("/preferences", preferenceHandler.Get)
		authed.PUT("/preferences", preferenceHandler.Update)
	}

	student := authed.Group("/student")
	student.Use(middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/dashboard", dashboardHandler.Student)
		student.POST("/notifications/clear", dashboardHandler.ClearNotifications)
		student.GET("/history/export", exportHandler.HistoryCSV)
		student.GET("/report/export", exportHandler.ReportPDF)

		student.POST("/sessions", sessionHandler.Start)
		student.GET("/sessions/:id", sessionHandler.Get)
		student.POST("/sessions/:id/location", sessionHandler.VerifyLocation)
		student.POST("/sessions/:id/retry", sessionHandler.Retry)
		student.POST("/sessions/:id/snapshot", sessionHandler.Snapshot)
		student.POST("/sessions/:id/submit", sessionHandler.Submit)
		student.DELETE("/sessions/:id", sessionHandler.Cancel)
	}

	faculty := authed.Group("/faculty")
	faculty.Use(middleware.RequireRoles(models.RoleFaculty))
	{
		faculty.GET("/dashboard", dashboardHandler.Faculty)
		faculty.POST("/attendance/open", dashboardHandler.OpenAttendance)
		faculty.POST("/attendance/close", dashboardHandler.CloseAttendance)
		faculty.PATCH("/roster/:id", dashboardHandler.SetRosterStudent)
		faculty.POST("/roster/mark-all", dashboardHandler.MarkAllRoster)
		faculty.GET("/class/export", exportHandler.RosterCSV)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

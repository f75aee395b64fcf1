package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository/mongodb"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/scheduler"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/server/router"
	commandsvc "github.com/mamadbah2/herdbook/internal/service/commands"
	feedingsvc "github.com/mamadbah2/herdbook/internal/service/feeding"
	reportingsvc "github.com/mamadbah2/herdbook/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/herdbook/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
	"github.com/mamadbah2/herdbook/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)
	gin.SetMode(gin.ReleaseMode)

	collector := metrics.New()

	// Optional integrations stay as nil interfaces when disabled.
	var (
		history   feedingsvc.HistoryStore
		archive   reportingsvc.Archive
		ledger    sheets.Repository
		messaging whatsappsvc.MessagingService
	)

	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName, cfg.MongoDB.ConnectRetries, baseLogger.Named("repo.mongodb"))
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		history, archive = mongoRepo, mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, calculation history disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		ledger = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, feed ledger and weekly report disabled")
	}

	feedingSvc := feedingsvc.NewService(history, ledger, collector, cfg.Ration.StrictCodes, baseLogger.Named("svc.feeding"))

	h := router.Handlers{
		Ration: handlers.NewRationHandler(feedingSvc, baseLogger.Named("handlers.ration")),
	}

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		dispatcher := commandsvc.NewService(feedingSvc, ledger, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, collector, baseLogger.Named("svc.whatsapp"))
		h.Webhook = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		messaging = messagingSvc
	} else {
		baseLogger.Warn("whatsapp credentials missing, command channel disabled")
	}

	if ledger != nil {
		reportingSvc := reportingsvc.NewService(ledger, archive, collector, baseLogger.Named("svc.reporting"))

		var notifier scheduler.Notifier
		if messaging != nil && cfg.WhatsApp.ReportRecipient != "" {
			notifier = messaging
		}

		sched, err := scheduler.NewScheduler(cfg.Reporting, cfg.WhatsApp.ReportRecipient, reportingSvc, notifier, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	engine := router.New(h, collector, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("strict_codes", cfg.Ration.StrictCodes))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

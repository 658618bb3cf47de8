package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/finsight/finsight/config"
	"github.com/finsight/finsight/data"
	"github.com/finsight/finsight/data/cache"
	"github.com/finsight/finsight/data/repository/postgres"
	"github.com/finsight/finsight/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/finsight/finsight/internal/externalApi/quoteApi"
	"github.com/finsight/finsight/internal/notifier/logNotifier"
	"github.com/finsight/finsight/internal/notifier/telegramNotifier"
	"github.com/finsight/finsight/internal/reportGenerator/xlsxGenerator"
	"github.com/finsight/finsight/internal/scheduler"
	"github.com/finsight/finsight/internal/service/alertService"
	"github.com/finsight/finsight/internal/service/portfolioService"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	priceCache := cache.NewRedisPriceCache(redisClient)

	quoteApiClient := quoteApi.New(cfg)

	reportGenerator := xlsxGenerator.New()

	googleCloudStorage := googleDriveApi.New(ctx, cfg)

	var notifier alertService.Notifier = logNotifier.New()
	if cfg.Telegram.Token != "" {
		notifier = telegramNotifier.New(cfg)
	}

	portfolioSrv := portfolioService.New(pgRepo, priceCache, reportGenerator, googleCloudStorage)

	alertSrv := alertService.New(pgRepo, priceCache, quoteApiClient, notifier)

	sched := scheduler.New()
	sched.NewIntervalJob("refresh prices", alertSrv.RefreshPrices, cfg.Jobs.PriceRefreshInterval, true)
	sched.NewCrontabJob("export portfolio reports", portfolioSrv.ExportAllReports, cfg.Jobs.ReportExportCrontab, false)
	sched.NewCrontabJob("drive cleanup", googleCloudStorage.DeleteOldFiles, cfg.Jobs.DriveCleanupCrontab, false)
	sched.Start()
	defer sched.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}

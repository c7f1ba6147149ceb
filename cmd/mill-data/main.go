package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"mill-data/internal/config"
	"mill-data/internal/database"
	"mill-data/internal/hazard"
	httpapi "mill-data/internal/http"
	"mill-data/internal/logger"
	"mill-data/internal/mqtt"
	"mill-data/internal/repository"
	"mill-data/internal/service"
	"mill-data/internal/signal"
	"mill-data/internal/store"
	"mill-data/internal/xlsx"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "mill-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	thresholds, err := config.LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		// defaults still apply; a broken file should be visible, not fatal
		log.Warn("failed to load thresholds file, using defaults", zap.Error(err))
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()
	if err := repository.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("redis unavailable, signal summaries will not be cached", zap.Error(err))
	} else {
		kv = store.NewRedisKV(redisClient)
	}
	defer redisClient.Close()

	var publisher service.HazardPublisher
	var alarmPub *mqtt.AlarmPublisher
	if cfg.MQTT.Enabled {
		alarmPub, err = mqtt.NewAlarmPublisher(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT enabled but connection failed, hazard alarms disabled", zap.Error(err))
		} else {
			publisher = alarmPub
			defer alarmPub.Close()
		}
	}

	recordsRepo := repository.NewPostgresRecordsRepository(db)
	hazardsRepo := repository.NewPostgresHazardsRepository(db)

	detector := hazard.NewDetector(thresholds.HazardKeywords)
	downtimeParser := xlsx.NewDowntimeHistoryParser(thresholds.Equipment)
	engine := signal.NewEngine(thresholds)

	ingest := service.NewIngestService(recordsRepo, hazardsRepo, detector, downtimeParser, publisher, kv, log)
	signals := service.NewSignalService(recordsRepo, engine, kv, log)
	photo := service.NewPhotoClient(&cfg.Photo, log)

	router := httpapi.NewRouter(log)
	router.RegisterUploadRoutes(httpapi.NewUploadHandler(ingest, log))
	router.RegisterExportRoutes(httpapi.NewExportHandler(log))
	router.RegisterSignalRoutes(httpapi.NewSignalHandler(signals, log))
	router.RegisterHazardRoutes(httpapi.NewHazardHandler(hazardsRepo, photo, thresholds.PhotoLabels, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

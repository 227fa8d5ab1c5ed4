package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/config"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/cache"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/messaging"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/admin-console/internal/api"
	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/internal/credentials"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/internal/utils"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация консоли",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	cacheClient, err := cache.NewRedisCache(ctx, cache.Options{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.ConnectTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer cacheClient.Close()
	log.Info("Кэш инициализирован")

	// Журнал запусков и архив аудита живут в PostgreSQL; консоль работает
	// и без них, поэтому сбой подключения не фатален
	var db *storage.PostgresStorage
	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		log.Warn("Строка подключения к PostgreSQL не собрана, журнал запусков отключен",
			interfaces.LogField{Key: "error", Value: err.Error()})
	} else {
		db, err = storage.NewPostgresStorage(ctx, postgresCon)
		if err != nil {
			log.Warn("PostgreSQL недоступен, журнал запусков отключен",
				interfaces.LogField{Key: "error", Value: err.Error()})
			db = nil
		} else {
			defer db.Close()
			log.Info("Хранилище инициализировано")
		}
	}

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID, log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	credentialStore := credentials.NewCacheStore(cacheClient, cfg.Security.AccessTokenTTL, cfg.Security.RefreshTokenTTL)

	client := apiclient.NewClient(cfg.API.BaseURL, credentialStore, log,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.RequestTimeout}),
		apiclient.WithAuthPaths(cfg.API.LoginPath, cfg.API.RefreshPath, cfg.API.MePath),
	)
	log.Info("Клиент внутреннего API инициализирован",
		interfaces.LogField{Key: "base_url", Value: cfg.API.BaseURL})

	var history services.JobHistoryStore
	if db != nil {
		history = db
	}
	syncService := services.NewSyncService(client, cacheClient, history, log, cfg.Redis.AdvertisersTTL)
	variantService := services.NewVariantService()

	activityService := services.NewActivityService(cfg.Activity.FeedSize, log)
	if err := activityService.Start(ctx, messagingClient, cfg.Kafka.AuditLogTopic); err != nil {
		log.Error("Ошибка подписки на поток аудита, лента действий пуста",
			interfaces.LogField{Key: "error", Value: err.Error()})
	} else {
		defer activityService.Stop()
		log.Info("Лента последних действий инициализирована",
			interfaces.LogField{Key: "topic", Value: cfg.Kafka.AuditLogTopic})
	}

	router := api.SetupRouter(api.RouterDeps{
		Client:          client,
		SyncService:     syncService,
		VariantService:  variantService,
		ActivityService: activityService,
		Storage:         db,
		Logger:          log,
		CORSOrigins:     cfg.Security.CORSAllowOrigins,
	})
	log.Info("Маршрутизатор настроен")

	if cfg.Metrics.Enabled {
		go func() {
			metricsAddr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info("Сервер метрик запущен", interfaces.LogField{Key: "address", Value: metricsAddr})
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				log.Error("Ошибка сервера метрик", interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		close(done)
	}()

	<-done
	log.Info("Консоль корректно завершила работу")
}

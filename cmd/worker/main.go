package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/config"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/messaging"
	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/internal/utils"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики для Prometheus
var (
	eventsArchived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_worker_events_archived_total",
		Help: "Общее количество заархивированных событий аудита",
	}, []string{"status"})

	archiveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audit_worker_archive_duration_seconds",
		Help:    "Длительность архивирования события",
		Buckets: prometheus.DefBuckets,
	})
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
	log.Info("Инициализация воркера архива аудита",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// HTTP сервер для метрик
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("OK"))
			})

			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			log.Info("Запуск HTTP сервера для метрик",
				interfaces.LogField{Key: "addr", Value: addr})

			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error("Ошибка запуска HTTP сервера для метрик",
					interfaces.LogField{Key: "error", Value: err.Error()})
			}
		}()
	}

	connectionStr, err := utils.GenerateConnectionString(
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
		log.Fatal("Ошибка генерации строки подключения к PostgreSQL",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}

	repo, err := storage.NewPostgresStorage(ctx, connectionStr)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer repo.Close()
	log.Info("Хранилище инициализировано")

	messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-archiver", log)
	if err != nil {
		log.Fatal("Ошибка инициализации системы обмена сообщениями",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer messagingClient.Close()
	log.Info("Система обмена сообщениями инициализирована")

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	subscribeToAuditLog(ctx, messagingClient, repo, cfg.Kafka.AuditLogTopic, log, &wg)

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")
		cancel()
		wg.Wait()
		close(done)
	}()

	log.Info("Воркер запущен и готов к обработке сообщений")
	<-done
	log.Info("Воркер корректно завершил работу")
}

// Подписка на поток событий аудита
func subscribeToAuditLog(ctx context.Context, messagingClient interfaces.MessagingPort,
	repo *storage.PostgresStorage, topic string,
	logger interfaces.LoggerPort, wg *sync.WaitGroup) {

	auditHandler := func(ctx context.Context, msg *interfaces.Message) error {
		startTime := time.Now()

		var event models.AuditLogEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.ErrorWithContext(ctx, "Ошибка декодирования события аудита",
				interfaces.LogField{Key: "error", Value: err.Error()},
				interfaces.LogField{Key: "message_id", Value: msg.ID},
			)
			eventsArchived.WithLabelValues("error").Inc()
			return err
		}

		if event.ID == "" {
			// Без идентификатора дедупликация невозможна, событие пропускается
			logger.WarnWithContext(ctx, "Событие аудита без идентификатора",
				interfaces.LogField{Key: "message_id", Value: msg.ID})
			eventsArchived.WithLabelValues("skipped").Inc()
			return nil
		}

		if err := repo.SaveAuditEvent(ctx, &event); err != nil {
			logger.ErrorWithContext(ctx, "Ошибка архивирования события аудита",
				interfaces.LogField{Key: "error", Value: err.Error()},
				interfaces.LogField{Key: "event_id", Value: event.ID},
			)
			eventsArchived.WithLabelValues("error").Inc()
			return err
		}

		archiveDuration.Observe(time.Since(startTime).Seconds())
		eventsArchived.WithLabelValues("success").Inc()

		logger.InfoWithContext(ctx, "Событие аудита заархивировано",
			interfaces.LogField{Key: "event_id", Value: event.ID},
			interfaces.LogField{Key: "action", Value: event.Action},
			interfaces.LogField{Key: "entity_type", Value: event.EntityType},
		)

		return nil
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		unsubscribe, err := messagingClient.Subscribe(ctx, topic, auditHandler)
		if err != nil {
			logger.Error("Ошибка подписки на поток аудита",
				interfaces.LogField{Key: "error", Value: err.Error()})
			return
		}
		defer unsubscribe()

		logger.Info("Подписка на поток аудита установлена",
			interfaces.LogField{Key: "topic", Value: topic})

		<-ctx.Done()
		logger.Info("Отмена подписки на поток аудита")
	}()
}

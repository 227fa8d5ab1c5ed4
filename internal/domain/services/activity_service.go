package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
)

// ActivityService ведет живую ленту активности консоли.
// Сервис подписывается на топик событий аудита и держит в памяти
// последние N строк, самые свежие - первыми.
type ActivityService struct {
	feedSize int
	logger   interfaces.LoggerPort

	mu    sync.RWMutex
	items []models.ActivityItem

	unsubscribe func() error
}

// NewActivityService создает новую ленту активности
func NewActivityService(feedSize int, logger interfaces.LoggerPort) *ActivityService {
	if feedSize <= 0 {
		feedSize = 10
	}
	return &ActivityService{
		feedSize: feedSize,
		logger:   logger,
	}
}

// Start подписывает ленту на топик событий аудита
func (s *ActivityService) Start(ctx context.Context, messaging interfaces.MessagingPort, topic string) error {
	unsubscribe, err := messaging.Subscribe(ctx, topic, s.handleMessage)
	if err != nil {
		return fmt.Errorf("подписка на топик %s: %w", topic, err)
	}

	s.unsubscribe = unsubscribe
	s.logger.Info("Лента активности подписана на топик",
		interfaces.LogField{Key: "topic", Value: topic},
	)
	return nil
}

// Stop отписывает ленту от топика
func (s *ActivityService) Stop() error {
	if s.unsubscribe == nil {
		return nil
	}
	return s.unsubscribe()
}

// handleMessage разбирает событие аудита и добавляет строку в ленту
func (s *ActivityService) handleMessage(ctx context.Context, msg *interfaces.Message) error {
	var event models.AuditLogEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("разбор события аудита: %w", err)
	}

	s.Append(event)
	return nil
}

// Append добавляет событие аудита в начало ленты, отбрасывая лишнее с конца
func (s *ActivityService) Append(event models.AuditLogEvent) {
	item := models.ActivityItem{
		Action:     FormatAuditAction(event),
		OccurredAt: event.Timestamp,
	}

	s.mu.Lock()
	s.items = append([]models.ActivityItem{item}, s.items...)
	if len(s.items) > s.feedSize {
		s.items = s.items[:s.feedSize]
	}
	s.mu.Unlock()
}

// Recent возвращает копию ленты с относительными метками времени
func (s *ActivityService) Recent() []models.ActivityItem {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ActivityItem, len(s.items))
	for i, item := range s.items {
		item.Time = TimeAgo(item.OccurredAt, now)
		out[i] = item
	}
	return out
}

// FormatAuditAction превращает событие аудита в человекочитаемую строку
func FormatAuditAction(event models.AuditLogEvent) string {
	entity := strings.ToLower(strings.ReplaceAll(event.EntityType, "_", " "))

	switch strings.ToLower(event.Action) {
	case "create":
		return fmt.Sprintf("Created %s %s", entity, event.EntityID)
	case "update":
		return fmt.Sprintf("Updated %s %s", entity, event.EntityID)
	case "delete":
		return fmt.Sprintf("Deleted %s %s", entity, event.EntityID)
	}
	return fmt.Sprintf("%s %s", event.Action, entity)
}

// TimeAgo возвращает относительную метку времени в стиле консоли
func TimeAgo(t, now time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	if seconds < 60 {
		return "Just now"
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	}

	days := hours / 24
	return fmt.Sprintf("%d day%s ago", days, plural(days))
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

package models

import (
	"encoding/json"
	"time"
)

// AuditLogEvent представляет событие аудита, приходящее из топика сообщений
type AuditLogEvent struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	UserID     string          `json:"userId"`
	Timestamp  time.Time       `json:"timestamp"`
	Changes    json.RawMessage `json:"changes,omitempty"`
}

// ActivityItem представляет одну строку ленты активности консоли
type ActivityItem struct {
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurredAt"`
	Time       string    `json:"time"` // относительное время на момент чтения ("5 min ago")
}

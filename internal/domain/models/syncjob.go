package models

import "time"

// JobKind определяет вид фоновой операции агрегатора
type JobKind string

const (
	JobAdvertiserSync JobKind = "advertiser_sync"
	JobOfferSync      JobKind = "offer_sync"
	JobProductSync    JobKind = "product_sync"
	JobDummyCleanup   JobKind = "dummy_cleanup"
)

// JobStatus представляет состояние одной фоновой операции
// Запись создается в состоянии Loading=true при запуске и переходит
// в Loading=false с итоговым сообщением при завершении или ошибке
type JobStatus struct {
	Loading bool   `json:"loading"`
	Message string `json:"message,omitempty"`
}

// JobRecord представляет завершенный запуск операции для журнала истории
type JobRecord struct {
	ID        string    `json:"id"`
	Kind      JobKind   `json:"kind"`
	Key       string    `json:"key"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"started_at"`
	SettledAt time.Time `json:"settled_at"`
}

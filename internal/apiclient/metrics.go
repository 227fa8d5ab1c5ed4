package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// метрики конвейера запросов
var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_console_api_requests_total",
		Help: "Количество запросов к внутреннему API по методу и статусу",
	}, []string{"method", "status"})

	tokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_console_token_refreshes_total",
		Help: "Количество попыток обновления токена по исходу",
	}, []string{"outcome"})
)

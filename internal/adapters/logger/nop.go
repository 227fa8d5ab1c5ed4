package logger

import (
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"go.uber.org/zap"
)

// NewNopLogger возвращает логгер, отбрасывающий все записи. Используется в тестах.
func NewNopLogger() interfaces.LoggerPort {
	return &ZapLogger{logger: zap.NewNop().Sugar()}
}

package storage

import (
	"context"
	"fmt"

	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/tx"
	"github.com/jackc/pgx/v5/pgxpool"
)

// jobHistoryKeep - сколько последних записей журнала хранить на каждую операцию
const jobHistoryKeep = 100

// PostgresStorage хранит журнал запусков операций и архив событий аудита
type PostgresStorage struct {
	pool *pgxpool.Pool
	txm  tx.TxManager
}

// NewPostgresStorage создает новое хранилище и проверяет соединение
func NewPostgresStorage(ctx context.Context, connString string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула соединений: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с PostgreSQL: %w", err)
	}

	return &PostgresStorage{
		pool: pool,
		txm:  tx.NewTxManager(pool),
	}, nil
}

// SaveJobRecord сохраняет завершенный запуск операции и подрезает журнал.
// Вставка и подрезка выполняются в одной транзакции, чтобы журнал не
// разрастался при сбое между ними.
func (s *PostgresStorage) SaveJobRecord(ctx context.Context, record *models.JobRecord) error {
	return s.txm.Do(ctx, func(ctx context.Context) error {
		t, ok := tx.GetTxFromContext(ctx)
		if !ok {
			return fmt.Errorf("транзакция отсутствует в контексте")
		}

		_, err := t.Exec(ctx, `
			INSERT INTO sync_job_history (id, kind, key, success, message, started_at, settled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			record.ID, string(record.Kind), record.Key, record.Success,
			record.Message, record.StartedAt, record.SettledAt,
		)
		if err != nil {
			return fmt.Errorf("ошибка вставки записи журнала: %w", err)
		}

		_, err = t.Exec(ctx, `
			DELETE FROM sync_job_history
			WHERE kind = $1 AND id NOT IN (
				SELECT id FROM sync_job_history
				WHERE kind = $1
				ORDER BY settled_at DESC
				LIMIT $2
			)`,
			string(record.Kind), jobHistoryKeep,
		)
		if err != nil {
			return fmt.Errorf("ошибка подрезки журнала: %w", err)
		}

		return nil
	})
}

// ListJobRecords возвращает последние запуски операции указанного вида
func (s *PostgresStorage) ListJobRecords(ctx context.Context, kind models.JobKind, limit int) ([]*models.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, key, success, message, started_at, settled_at
		FROM sync_job_history
		WHERE kind = $1
		ORDER BY settled_at DESC
		LIMIT $2`,
		string(kind), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	var records []*models.JobRecord
	for rows.Next() {
		var record models.JobRecord
		var kindStr string
		if err := rows.Scan(&record.ID, &kindStr, &record.Key, &record.Success,
			&record.Message, &record.StartedAt, &record.SettledAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки журнала: %w", err)
		}
		record.Kind = models.JobKind(kindStr)
		records = append(records, &record)
	}

	return records, rows.Err()
}

// SaveAuditEvent архивирует событие аудита; повторная доставка игнорируется
func (s *PostgresStorage) SaveAuditEvent(ctx context.Context, event *models.AuditLogEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_log_archive (id, action, entity_type, entity_id, user_id, occurred_at, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Action, event.EntityType, event.EntityID,
		event.UserID, event.Timestamp, []byte(event.Changes),
	)
	if err != nil {
		return fmt.Errorf("ошибка архивирования события аудита: %w", err)
	}
	return nil
}

// ListAuditEvents возвращает последние события аудита из архива
func (s *PostgresStorage) ListAuditEvents(ctx context.Context, limit int) ([]*models.AuditLogEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, action, entity_type, entity_id, user_id, occurred_at, changes
		FROM audit_log_archive
		ORDER BY occurred_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения архива аудита: %w", err)
	}
	defer rows.Close()

	var events []*models.AuditLogEvent
	for rows.Next() {
		var event models.AuditLogEvent
		var changes []byte
		if err := rows.Scan(&event.ID, &event.Action, &event.EntityType,
			&event.EntityID, &event.UserID, &event.Timestamp, &changes); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки архива: %w", err)
		}
		event.Changes = changes
		events = append(events, &event)
	}

	return events, rows.Err()
}

// Close закрывает пул соединений
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shaiso/Dashboard/internal/dashboard"
	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/repo"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

// SnapshotReader — чтение снимков. Реализуется *repo.SnapshotRepo.
type SnapshotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Snapshot, error)
	List(ctx context.Context, limit, offset int) ([]repo.SnapshotSummary, error)
	Count(ctx context.Context) (int, error)
}

// Snapshotter — снятие снимка по запросу. Реализуется *publisher.Publisher.
type Snapshotter interface {
	SnapshotNow(ctx context.Context) (*domain.Snapshot, error)
}

// ClearNotifier — уведомление об очистке виджетов. Реализуется *mq.Publisher.
type ClearNotifier interface {
	PublishEntriesCleared(ctx context.Context, keys []string) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	dash        *dashboard.Dashboard
	snapshots   SnapshotReader
	snapshotter Snapshotter
	notifier    ClearNotifier
	metrics     *telemetry.Metrics
	logger      *slog.Logger
}

// Config — конфигурация для создания Handler.
// Snapshots, Snapshotter и Notifier могут быть nil (БД или RabbitMQ недоступны).
type Config struct {
	Dashboard   *dashboard.Dashboard
	Snapshots   SnapshotReader
	Snapshotter Snapshotter
	Notifier    ClearNotifier
	Metrics     *telemetry.Metrics
	Logger      *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		dash:        cfg.Dashboard,
		snapshots:   cfg.Snapshots,
		snapshotter: cfg.Snapshotter,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

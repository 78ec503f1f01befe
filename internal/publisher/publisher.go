package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Dashboard/internal/dashboard"
	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

// Default configuration values.
const (
	defaultInterval        = 50 * time.Millisecond
	defaultSnapshotTimeout = 10 * time.Second
)

// ErrNoSnapshotStore — снимки недоступны (БД не настроена).
var ErrNoSnapshotStore = errors.New("snapshot store not configured")

// Events — получатель событий телеметрии. Реализуется *mq.Publisher.
type Events interface {
	PublishEntriesUpdated(ctx context.Context, table string, seq uint64, changes []domain.Change) error
	PublishSnapshotTaken(ctx context.Context, snap *domain.Snapshot) error
}

// SnapshotStore — хранилище снимков. Реализуется *repo.SnapshotRepo.
type SnapshotStore interface {
	Create(ctx context.Context, snap *domain.Snapshot) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// PersistentStore — хранилище persistent entries. Реализуется *repo.EntryRepo.
type PersistentStore interface {
	ReplacePersistent(ctx context.Context, entries []domain.Entry) error
}

// Publisher — цикл публикации dashboard.
type Publisher struct {
	dash       *dashboard.Dashboard
	events     Events
	snapshots  SnapshotStore
	persistent PersistentStore
	metrics    *telemetry.Metrics
	logger     *slog.Logger

	interval     time.Duration
	snapshotCron string
	retention    time.Duration

	// tickMu сериализует Tick: lastSeq читается и продвигается
	// одним тиком целиком.
	tickMu  sync.Mutex
	lastSeq uint64

	// persistentDirty — набор persistent entries изменился, но ещё
	// не записан в хранилище. Охраняется tickMu.
	persistentDirty bool

	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Publisher.
type Config struct {
	Dashboard *dashboard.Dashboard

	// Events — nil, если RabbitMQ недоступен: изменения только накапливаются в таблице.
	Events Events

	// Snapshots и Persistent — nil, если БД недоступна.
	Snapshots  SnapshotStore
	Persistent PersistentStore

	// Interval — период тика (default: 50ms).
	Interval time.Duration

	// SnapshotCron — расписание снимков; пусто — без расписания.
	SnapshotCron string

	// SnapshotRetention — удалять снимки старше (0 — не удалять).
	SnapshotRetention time.Duration

	Metrics *telemetry.Metrics
	Logger  *slog.Logger
}

// New создаёт новый Publisher.
func New(cfg Config) *Publisher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Publisher{
		dash:         cfg.Dashboard,
		events:       cfg.Events,
		snapshots:    cfg.Snapshots,
		persistent:   cfg.Persistent,
		metrics:      cfg.Metrics,
		logger:       logger,
		interval:     interval,
		snapshotCron: cfg.SnapshotCron,
		retention:    cfg.SnapshotRetention,
	}
}

// Tick выполняет один цикл публикации.
//
// Если публикация не удалась, lastSeq не продвигается, и те же
// изменения уйдут следующим тиком. Неудачная запись persistent
// entries повторяется следующими тиками без повторной публикации.
// Ошибки UpdateValues отдельных виджетов не мешают публикации остальных.
func (p *Publisher) Tick(ctx context.Context) error {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	start := time.Now()
	err := p.tick(ctx)

	if p.metrics != nil {
		p.metrics.Ticks.Inc()
		p.metrics.TickDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			p.metrics.TickErrors.Inc()
		}
	}
	return err
}

func (p *Publisher) tick(ctx context.Context) error {
	_, updateErr := p.dash.UpdateValues()

	inst := p.dash.Instance()
	changes, seq := inst.ChangesSince(p.lastSeq)
	if len(changes) > 0 {
		if p.events != nil {
			if err := p.events.PublishEntriesUpdated(ctx, p.dash.Table().Path(), seq, changes); err != nil {
				return errors.Join(updateErr, fmt.Errorf("publish entries: %w", err))
			}
			if p.metrics != nil {
				p.metrics.EntriesPublished.Add(float64(len(changes)))
			}
		}

		if touchesPersistent(changes) {
			p.persistentDirty = true
		}
		p.lastSeq = seq
		inst.PruneTombstones(seq)

		p.logger.Debug("tick published", "changes", len(changes), "seq", seq)
	}

	// Синхронизация повторяется отдельно от публикации: уже
	// опубликованные изменения второй раз в брокер не уходят.
	if p.persistent != nil && p.persistentDirty {
		if err := p.persistent.ReplacePersistent(ctx, inst.Persistent()); err != nil {
			return errors.Join(updateErr, fmt.Errorf("sync persistent entries: %w", err))
		}
		p.persistentDirty = false
	}

	return updateErr
}

// touchesPersistent — изменился ли набор persistent entries.
// Удаление могло затронуть persistent entry: tombstone флаг не хранит.
func touchesPersistent(changes []domain.Change) bool {
	for _, c := range changes {
		if c.Persistent || c.Kind == domain.ChangeKindDelete || c.Kind == domain.ChangeKindFlags {
			return true
		}
	}
	return false
}

// SnapshotNow сохраняет снимок всех entries.
func (p *Publisher) SnapshotNow(ctx context.Context) (*domain.Snapshot, error) {
	if p.snapshots == nil {
		return nil, ErrNoSnapshotStore
	}

	snap := domain.NewSnapshot(p.dash.Instance().Entries(""))
	logger := telemetry.WithSnapshotID(p.logger, snap.ID.String())

	if err := p.snapshots.Create(ctx, snap); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	if p.metrics != nil {
		p.metrics.Snapshots.Inc()
	}

	if p.persistent != nil {
		if err := p.persistent.ReplacePersistent(ctx, p.dash.Instance().Persistent()); err != nil {
			logger.Warn("failed to sync persistent entries", "error", err)
		}
	}

	if p.retention > 0 {
		deleted, err := p.snapshots.DeleteOlderThan(ctx, snap.TakenAt.Add(-p.retention))
		if err != nil {
			logger.Warn("failed to delete old snapshots", "error", err)
		} else if deleted > 0 {
			logger.Info("old snapshots deleted", "count", deleted)
		}
	}

	if p.events != nil {
		if err := p.events.PublishSnapshotTaken(ctx, snap); err != nil {
			// Снимок уже в БД
			logger.Warn("failed to publish snapshot.taken", "error", err)
		}
	}

	logger.Info("snapshot taken", "entries", snap.EntryCount())
	return snap, nil
}

// Start запускает цикл публикации и расписание снимков.
func (p *Publisher) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	if p.snapshotCron != "" {
		if p.snapshots == nil {
			p.logger.Warn("snapshot_cron set but snapshot store is not configured, schedule disabled")
		} else {
			c := newCron(p.logger)
			if _, err := c.AddFunc(p.snapshotCron, func() { p.scheduledSnapshot(ctx) }); err != nil {
				cancel()
				return fmt.Errorf("schedule snapshots %q: %w", p.snapshotCron, err)
			}
			c.Start()

			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				<-ctx.Done()
				<-c.Stop().Done()
			}()
		}
	}

	p.cancelFunc = cancel

	p.logger.Info("starting publisher",
		"interval", p.interval,
		"snapshot_cron", p.snapshotCron,
		"events", p.events != nil,
	)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.loop(ctx)
	}()

	return nil
}

// Stop останавливает цикл и ждёт завершения текущего тика и снимка.
func (p *Publisher) Stop() {
	if p.cancelFunc != nil {
		p.cancelFunc()
	}
	p.wg.Wait()
	p.logger.Info("publisher stopped")
}

func (p *Publisher) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Tick(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("publish tick failed", "error", err)
			}
		}
	}
}

func (p *Publisher) scheduledSnapshot(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, defaultSnapshotTimeout)
	defer cancel()

	if _, err := p.SnapshotNow(ctx); err != nil {
		p.logger.Error("scheduled snapshot failed", "error", err)
	}
}

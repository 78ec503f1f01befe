// Dashboard Server — сервис телеметрии SmartDashboard.
//
// Сервер:
//   - Держит таблицу entries и реестр виджетов
//   - Публикует изменения в RabbitMQ каждые publish_interval
//   - Применяет команды записи от dashboard (API и очередь commands.entry-set)
//   - Сохраняет persistent entries и снимки таблицы в PostgreSQL
//
// PostgreSQL и RabbitMQ необязательны: без них сервер работает
// только с таблицей в памяти.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Dashboard/internal/api"
	"github.com/shaiso/Dashboard/internal/config"
	"github.com/shaiso/Dashboard/internal/dashboard"
	"github.com/shaiso/Dashboard/internal/mq"
	"github.com/shaiso/Dashboard/internal/publisher"
	"github.com/shaiso/Dashboard/internal/repo"
	"github.com/shaiso/Dashboard/internal/table"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger("dashboard-server")
	logger.Info("starting dashboard-server")

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)

	inst := table.NewInstance()
	dash := dashboard.New(dashboard.Config{
		Instance:  inst,
		TableName: cfg.TableName,
		Registry:  dashboard.Default(),
		Logger:    logger,
		Metrics:   metrics,
	})

	pubCfg := publisher.Config{
		Dashboard:         dash,
		Interval:          cfg.PublishInterval,
		SnapshotCron:      cfg.SnapshotCron,
		SnapshotRetention: cfg.SnapshotRetention,
		Metrics:           metrics,
		Logger:            logger,
	}
	apiCfg := api.Config{
		Dashboard: dash,
		Metrics:   metrics,
		Logger:    logger,
	}

	// PostgreSQL
	if pool := connectDB(ctx, cfg, logger); pool != nil {
		defer pool.Close()

		entryRepo := repo.NewEntryRepo(pool)
		snapshotRepo := repo.NewSnapshotRepo(pool)
		restorePersistent(ctx, entryRepo, inst, logger)

		pubCfg.Persistent = entryRepo
		pubCfg.Snapshots = snapshotRepo
		apiCfg.Snapshots = snapshotRepo
	}

	// RabbitMQ
	var consumer *mq.Consumer
	mqURL := cfg.RabbitMQURL
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}
	mqConn, err := mq.NewConnection(mqURL, "dashboard-server", logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, changes are not broadcast", "error", err)
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		events := mq.NewPublisher(mqConn, logger)
		pubCfg.Events = events
		apiCfg.Notifier = events

		consumer = mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue: mq.QueueCommandsEntrySet,
			Handler: mq.EntryCommandHandler(inst, logger, func(err error) {
				metrics.ObserveRemoteWrite("mq", err)
			}),
			Prefetch: 16,
		})
		go func() {
			if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	}

	if cfg.DemoWidgets {
		if err := registerDemoWidgets(dash); err != nil {
			logger.Error("failed to register demo widgets", "error", err)
			os.Exit(1)
		}
	}

	pub := publisher.New(pubCfg)
	if err := pub.Start(ctx); err != nil {
		logger.Error("failed to start publisher", "error", err)
		os.Exit(1)
	}
	apiCfg.Snapshotter = pub

	// HTTP
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime).Round(time.Second))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	api.NewHandler(apiCfg).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	if consumer != nil {
		consumer.Stop()
	}
	pub.Stop()

	// Финальный тик: последние изменения уходят в очередь и БД
	if err := pub.Tick(shutdownCtx); err != nil {
		logger.Warn("final publish failed", "error", err)
	}
	dash.ClearData()

	logger.Info("dashboard-server stopped")
}

// connectDB подключается к PostgreSQL и применяет миграции.
// Возвращает nil, если БД недоступна.
func connectDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("database not available, persistence disabled", "error", err)
		return nil
	}
	if err := repo.Migrate(ctx, pool); err != nil {
		logger.Warn("failed to migrate database, persistence disabled", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("database connected")
	return pool
}

// restorePersistent загружает persistent entries в таблицу.
func restorePersistent(ctx context.Context, entries *repo.EntryRepo, inst *table.Instance, logger *slog.Logger) {
	saved, err := entries.LoadPersistent(ctx)
	if err != nil {
		logger.Warn("failed to load persistent entries", "error", err)
		return
	}
	if err := inst.Restore(saved); err != nil {
		// Restore применяет всё, что может, и возвращает ошибки остальных
		logger.Warn("some persistent entries were not restored", "error", err)
	}
	logger.Info("persistent entries restored", "count", len(saved))
}

// Package telemetry обеспечивает наблюдаемость dashboard-сервиса.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики (виджеты, цикл публикации, API)
//
// Метрики регистрируются в переданном prometheus.Registerer,
// сервер экспортирует их на /metrics.
package telemetry

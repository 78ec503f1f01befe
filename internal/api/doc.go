// Package api содержит HTTP API dashboard-сервера.
//
// Структура:
//   - handler.go          — Handler с DI (dashboard, снимки, события, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (recovery, logging, метрики запросов)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (request/response)
//   - entry_handler.go    — обработчики для /entries и /persistent
//   - widget_handler.go   — обработчики для /widgets
//   - snapshot_handler.go — обработчики для /snapshots
//
// Запись через API идёт с источником remote: сеттеры виджетов
// получают значение так же, как из очереди команд.
package api

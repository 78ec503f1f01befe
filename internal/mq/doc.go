// Package mq предоставляет транспорт dashboard через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с автоматическим переподключением
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация событий телеметрии
//   - consumer.go   — потребление команд (ack/requeue/DLQ)
//   - commands.go   — применение команд записи к таблице
//
// Типы сообщений:
//   - entries.updated — пачка изменений entries за цикл публикации
//   - entries.cleared — виджеты удалены
//   - snapshot.taken  — снимок сохранён
//   - entry.set       — команда записи от dashboard
//
// Exchanges:
//   - dashboard.telemetry — события телеметрии (topic)
//   - dashboard.commands  — команды от dashboard (direct)
//   - dashboard.dlq       — dead letter queue
package mq

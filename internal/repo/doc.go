// Package repo хранит состояние dashboard в PostgreSQL (pgx).
//
// Таблицы:
//   - persistent_entries — entries с флагом persistent, восстанавливаются при старте
//   - snapshots          — снимки всей таблицы (entries в JSONB)
//
// Схема лежит в migrations/ и применяется через Migrate.
package repo

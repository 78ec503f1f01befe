// Package publisher реализует цикл публикации dashboard.
//
// Каждый тик:
//  1. UpdateValues — виджеты пишут текущие значения в таблицу
//  2. ChangesSince — собираются изменения с прошлого тика
//  3. изменения публикуются одной пачкой (entries.updated)
//  4. если затронуты persistent entries — они синхронизируются с БД
//
// Снимки таблицы сохраняются по cron-расписанию (robfig/cron)
// и по запросу (SnapshotNow).
package publisher

// Package cli реализует инструмент командной строки dashboard.
//
// # Обзор
//
// CLI — клиентская утилита для оператора dashboard.
// Работает через HTTP, не импортирует внутренние пакеты сервера.
// CLI читает и пишет entries, управляет виджетами и снимками.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для dashboard API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8090")
//	entries, err := client.ListEntries("/SmartDashboard")
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: dashboard entry list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - entry: list, get, set, delete, persist
//   - widget: list, remove, clear
//   - snapshot: list, show, take
//
// Каждая группа создаётся через фабричную функцию (NewEntryCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli

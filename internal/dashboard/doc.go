// Package dashboard реализует реестр виджетов и фасад SmartDashboard.
//
// Registry хранит виджеты (Sendable) по строковым ключам через
// Handle со счётчиком ссылок. Все изменения реестра упорядочены
// внутренним мьютексом: Add и Clear образуют последовательную историю.
// Перезапись ключа и Clear освобождают предыдущие Handle; когда
// последняя ссылка отпущена, срабатывают release-хуки (например,
// отвязка TableBuilder от таблицы).
//
// Dashboard — фасад над Registry и подтаблицей "SmartDashboard":
// PutData/GetData/ClearData для виджетов, Put*/Get* для простых значений,
// UpdateValues для публикации текущего состояния виджетов.
package dashboard

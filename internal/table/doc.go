// Package table реализует иерархическое хранилище типизированных entries,
// в которое виджеты публикуют своё состояние и из которого dashboard его читает.
//
// Структура:
//   - instance.go — Instance: плоская карта путь → значение, sequence, listeners
//   - table.go    — Table: представление поддерева ("/SmartDashboard", подтаблицы виджетов)
//   - entry.go    — Entry: типизированный доступ к одному пути
//
// Пути имеют вид "/SmartDashboard/Autonomous Mode/selected".
// Каждое изменение получает монотонно растущий номер (seq), по которому
// publisher забирает только новые изменения (ChangesSince).
//
// Тип entry фиксируется при первой записи: запись значения другого типа
// возвращает ErrTypeMismatch и не меняет хранимое значение.
//
// Listeners вызываются синхронно после снятия блокировки, поэтому
// из listener'а можно писать в ту же таблицу.
package table

// Package sendable описывает протокол виджетов dashboard.
//
// Виджет (Sendable) сам ничего не пишет в таблицу. В InitSendable он
// описывает свои свойства через Builder: тип виджета, геттеры, которые
// периодически публикуются, и сеттеры, которые вызываются, когда dashboard
// меняет значение удалённо.
//
// Структура:
//   - sendable.go      — Sendable, Named, Base
//   - builder.go       — Builder и TableBuilder (привязка виджета к подтаблице)
//   - chooser.go       — Chooser[T]: выбор варианта на dashboard ("String Chooser")
//   - accelerometer.go — Accelerometer: три оси ("3AxisAccelerometer")
//   - toggle.go        — Toggle: управляемый boolean-актуатор ("Solenoid")
//
// Пример:
//
//	chooser := sendable.NewChooser[string]()
//	chooser.SetDefaultOption("Drive", "drive")
//	chooser.AddOption("Idle", "idle")
//	dash.PutData("Autonomous Mode", chooser)
package sendable

package sendable

import "sync"

// ToggleType — тип виджета для dashboard.
const ToggleType = "Solenoid"

// Toggle — управляемый boolean-актуатор.
//
// Значение публикуется в "Value" и может быть изменено с dashboard.
// Безопасное состояние — выключено.
type Toggle struct {
	Base

	mu       sync.RWMutex
	on       bool
	onChange func(bool)
}

// NewToggle создаёт выключенный Toggle.
func NewToggle(name string) *Toggle {
	t := &Toggle{}
	t.SetName(name)
	return t
}

// Set включает или выключает.
func (t *Toggle) Set(on bool) {
	t.mu.Lock()
	changed := t.on != on
	t.on = on
	fn := t.onChange
	t.mu.Unlock()

	if changed && fn != nil {
		fn(on)
	}
}

// Get возвращает текущее состояние.
func (t *Toggle) Get() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.on
}

// OnChange задаёт обработчик смены состояния.
func (t *Toggle) OnChange(fn func(bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// InitSendable реализует Sendable.
func (t *Toggle) InitSendable(b Builder) {
	b.SetSmartDashboardType(ToggleType)
	b.SetActuator(true)
	b.SetSafeState(func() { t.Set(false) })
	b.AddBooleanProperty("Value", t.Get, t.Set)
}

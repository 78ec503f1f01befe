package sendable

// ValueType — тип виджета-значения для dashboard.
const ValueType = "Value"

// Value — виджет из одного свойства "Value" с функциональным геттером.
//
// Используется для публикации вычисляемых величин без отдельного типа:
//
//	d.PutNamedData(sendable.NewNumber("Battery", battery.Voltage))
type Value struct {
	Base
	init func(b Builder)
}

// NewNumber создаёт виджет числового значения.
func NewNumber(name string, get func() float64) *Value {
	return newValue(name, func(b Builder) {
		b.AddDoubleProperty("Value", get, nil)
	})
}

// NewFlag создаёт виджет boolean-значения.
func NewFlag(name string, get func() bool) *Value {
	return newValue(name, func(b Builder) {
		b.AddBooleanProperty("Value", get, nil)
	})
}

// NewText создаёт виджет строкового значения.
func NewText(name string, get func() string) *Value {
	return newValue(name, func(b Builder) {
		b.AddStringProperty("Value", get, nil)
	})
}

func newValue(name string, init func(b Builder)) *Value {
	v := &Value{init: init}
	v.SetName(name)
	return v
}

// InitSendable реализует Sendable.
func (v *Value) InitSendable(b Builder) {
	b.SetSmartDashboardType(ValueType)
	v.init(b)
}

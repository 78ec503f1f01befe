package sendable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/table"
)

// Служебные ключи в подтаблице виджета.
const (
	KeyType         = ".type"
	KeyName         = ".name"
	KeyActuator     = ".actuator"
	KeyControllable = ".controllable"
)

// ErrBuilderClosed — builder уже отвязан от таблицы.
var ErrBuilderClosed = errors.New("builder closed")

// Builder — интерфейс, через который виджет описывает свои свойства.
//
// Геттер публикуется при каждом Update. Сеттер вызывается, когда значение
// меняется удалённо (dashboard, API, очередь команд). nil геттер или сеттер
// означает, что свойство только для записи или только для чтения.
type Builder interface {
	// SetSmartDashboardType задаёт тип виджета для отображения.
	SetSmartDashboardType(typ string)

	// SetActuator помечает виджет как актуатор (управляет железом).
	SetActuator(actuator bool)

	// SetSafeState задаёт функцию перевода виджета в безопасное состояние.
	SetSafeState(fn func())

	// SetUpdateTable задаёт функцию, вызываемую в конце каждого Update.
	SetUpdateTable(fn func())

	AddBooleanProperty(key string, getter func() bool, setter func(bool))
	AddDoubleProperty(key string, getter func() float64, setter func(float64))
	AddStringProperty(key string, getter func() string, setter func(string))
	AddRawProperty(key string, getter func() []byte, setter func([]byte))
	AddBooleanArrayProperty(key string, getter func() []bool, setter func([]bool))
	AddDoubleArrayProperty(key string, getter func() []float64, setter func([]float64))
	AddStringArrayProperty(key string, getter func() []string, setter func([]string))

	// Table возвращает подтаблицу виджета.
	Table() *table.Table
}

// property — одно свойство виджета.
type property struct {
	entry  *table.Entry
	typ    domain.ValueType
	get    func() domain.Value
	set    func(domain.Value)
	listen table.ListenerID
}

// TableBuilder связывает виджет с подтаблицей.
//
// Жизненный цикл:
//
//	NewTableBuilder → InitSendable(b) → StartListeners → Update ... → Close
type TableBuilder struct {
	tbl *table.Table

	mu           sync.Mutex
	properties   []*property
	updateTables []func()
	safeState    func()
	actuator     bool
	listening    bool
	closed       bool

	// metaErrs — ошибки записи служебных ключей, ещё не отданные Update.
	metaErrs []error
}

// NewTableBuilder создаёт builder для подтаблицы.
func NewTableBuilder(tbl *table.Table) *TableBuilder {
	return &TableBuilder{tbl: tbl}
}

// Table возвращает подтаблицу виджета.
func (b *TableBuilder) Table() *table.Table {
	return b.tbl
}

// SetSmartDashboardType записывает ".type".
func (b *TableBuilder) SetSmartDashboardType(typ string) {
	b.setMeta(KeyType, domain.StringValue(typ))
}

// SetActuator записывает ".actuator".
func (b *TableBuilder) SetActuator(actuator bool) {
	b.mu.Lock()
	b.actuator = actuator
	b.mu.Unlock()

	b.setMeta(KeyActuator, domain.BooleanValue(actuator))
}

// IsActuator возвращает true, если виджет — актуатор.
func (b *TableBuilder) IsActuator() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.actuator
}

// SetSafeState задаёт функцию безопасного состояния.
func (b *TableBuilder) SetSafeState(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.safeState = fn
}

// SetUpdateTable добавляет функцию, вызываемую после публикации свойств.
func (b *TableBuilder) SetUpdateTable(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateTables = append(b.updateTables, fn)
}

func (b *TableBuilder) AddBooleanProperty(key string, getter func() bool, setter func(bool)) {
	addProperty(b, key, domain.ValueTypeBoolean, getter, setter,
		domain.BooleanValue, func(v domain.Value) bool { return v.Boolean })
}

func (b *TableBuilder) AddDoubleProperty(key string, getter func() float64, setter func(float64)) {
	addProperty(b, key, domain.ValueTypeDouble, getter, setter,
		domain.DoubleValue, func(v domain.Value) float64 { return v.Double })
}

func (b *TableBuilder) AddStringProperty(key string, getter func() string, setter func(string)) {
	addProperty(b, key, domain.ValueTypeString, getter, setter,
		domain.StringValue, func(v domain.Value) string { return v.String })
}

func (b *TableBuilder) AddRawProperty(key string, getter func() []byte, setter func([]byte)) {
	addProperty(b, key, domain.ValueTypeRaw, getter, setter,
		domain.RawValue, func(v domain.Value) []byte { return v.Raw })
}

func (b *TableBuilder) AddBooleanArrayProperty(key string, getter func() []bool, setter func([]bool)) {
	addProperty(b, key, domain.ValueTypeBooleanArray, getter, setter,
		domain.BooleanArrayValue, func(v domain.Value) []bool { return v.BooleanArray })
}

func (b *TableBuilder) AddDoubleArrayProperty(key string, getter func() []float64, setter func([]float64)) {
	addProperty(b, key, domain.ValueTypeDoubleArray, getter, setter,
		domain.DoubleArrayValue, func(v domain.Value) []float64 { return v.DoubleArray })
}

func (b *TableBuilder) AddStringArrayProperty(key string, getter func() []string, setter func([]string)) {
	addProperty(b, key, domain.ValueTypeStringArray, getter, setter,
		domain.StringArrayValue, func(v domain.Value) []string { return v.StringArray })
}

// addProperty регистрирует типизированное свойство.
func addProperty[T any](b *TableBuilder, key string, typ domain.ValueType,
	getter func() T, setter func(T),
	toValue func(T) domain.Value, fromValue func(domain.Value) T,
) {
	p := &property{
		entry: b.tbl.Entry(key),
		typ:   typ,
	}
	if getter != nil {
		p.get = func() domain.Value { return toValue(getter()) }
	}
	if setter != nil {
		p.set = func(v domain.Value) { setter(fromValue(v)) }
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.properties = append(b.properties, p)
	if b.listening && p.set != nil {
		b.attachLocked(p)
	}
}

// Update публикует текущие значения всех геттеров.
// Ошибки отдельных свойств собираются, публикация остальных продолжается.
// Отложенные ошибки служебных ключей возвращаются один раз.
func (b *TableBuilder) Update() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBuilderClosed
	}
	props := make([]*property, len(b.properties))
	copy(props, b.properties)
	updates := make([]func(), len(b.updateTables))
	copy(updates, b.updateTables)
	errs := b.metaErrs
	b.metaErrs = nil
	b.mu.Unlock()

	// Геттеры вызываются без блокировки: они могут быть медленными
	// или обращаться к самому builder'у.
	for _, p := range props {
		if p.get == nil {
			continue
		}
		if err := p.entry.Set(p.get()); err != nil {
			errs = append(errs, fmt.Errorf("update %s: %w", p.entry.Path(), err))
		}
	}
	for _, fn := range updates {
		fn()
	}

	return errors.Join(errs...)
}

// StartListeners подписывает сеттеры на удалённые изменения.
func (b *TableBuilder) StartListeners() {
	b.mu.Lock()
	if b.closed || b.listening {
		b.mu.Unlock()
		return
	}
	for _, p := range b.properties {
		if p.set != nil {
			b.attachLocked(p)
		}
	}
	b.listening = true
	b.mu.Unlock()

	b.setMeta(KeyControllable, domain.BooleanValue(true))
}

// StopListeners отписывает сеттеры.
func (b *TableBuilder) StopListeners() {
	b.mu.Lock()
	stopped := b.stopLocked()
	b.mu.Unlock()

	if stopped {
		b.setMeta(KeyControllable, domain.BooleanValue(false))
	}
}

// setMeta записывает служебный ключ. Ошибка откладывается до ближайшего Update.
func (b *TableBuilder) setMeta(key string, v domain.Value) {
	e := b.tbl.Entry(key)
	if err := e.Set(v); err != nil {
		b.mu.Lock()
		b.metaErrs = append(b.metaErrs, fmt.Errorf("set %s: %w", e.Path(), err))
		b.mu.Unlock()
	}
}

// StartLiveWindowMode переводит виджет в безопасное состояние и включает управление.
func (b *TableBuilder) StartLiveWindowMode() {
	b.runSafeState()
	b.StartListeners()
}

// StopLiveWindowMode выключает управление и переводит виджет в безопасное состояние.
func (b *TableBuilder) StopLiveWindowMode() {
	b.StopListeners()
	b.runSafeState()
}

// IsListening возвращает true, если сеттеры подписаны.
func (b *TableBuilder) IsListening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

// Close отвязывает builder от таблицы. Повторный вызов — no-op.
// Entries виджета в таблице остаются.
func (b *TableBuilder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	_ = b.stopLocked()
	b.properties = nil
	b.updateTables = nil
	b.safeState = nil
	b.closed = true
}

// Closed возвращает true после Close.
func (b *TableBuilder) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *TableBuilder) runSafeState() {
	b.mu.Lock()
	fn := b.safeState
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// stopLocked отписывает сеттеры. Возвращает true, если подписки были.
func (b *TableBuilder) stopLocked() bool {
	if !b.listening {
		return false
	}
	for _, p := range b.properties {
		if p.listen != 0 {
			p.entry.RemoveListener(p.listen)
			p.listen = 0
		}
	}
	b.listening = false
	return true
}

// attachLocked подписывает сеттер свойства. Вызывается под mu.
//
// Локальные изменения (в том числе собственные Update) сеттер не вызывают.
func (b *TableBuilder) attachLocked(p *property) {
	set := p.set
	typ := p.typ
	p.listen = p.entry.AddListener(func(c domain.Change) {
		if c.Source == domain.SourceLocal || c.Kind != domain.ChangeKindSet {
			return
		}
		if c.Value.Type != typ {
			return
		}
		set(c.Value)
	})
}

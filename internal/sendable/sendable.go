package sendable

import "sync"

// Sendable — объект, который умеет публиковать своё состояние на dashboard.
type Sendable interface {
	// InitSendable описывает свойства объекта через builder.
	// Вызывается один раз при регистрации виджета.
	InitSendable(b Builder)
}

// Named — Sendable с именем и подсистемой.
// Dashboard.PutNamedData использует Name() как ключ.
type Named interface {
	Sendable
	Name() string
	Subsystem() string
}

// Base хранит имя и подсистему виджета. Встраивается в виджеты.
type Base struct {
	mu        sync.RWMutex
	name      string
	subsystem string
}

// Name возвращает имя виджета.
func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetName задаёт имя виджета.
func (b *Base) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

// Subsystem возвращает имя подсистемы.
func (b *Base) Subsystem() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.subsystem
}

// SetSubsystem задаёт имя подсистемы.
func (b *Base) SetSubsystem(subsystem string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subsystem = subsystem
}

// SetNameAndSubsystem задаёт подсистему и имя.
func (b *Base) SetNameAndSubsystem(subsystem, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subsystem = subsystem
	b.name = name
}

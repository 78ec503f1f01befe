package sendable

import (
	"sort"
	"sync"
)

// Ключи подтаблицы Chooser.
const (
	ChooserDefault  = "default"
	ChooserSelected = "selected"
	ChooserActive   = "active"
	ChooserOptions  = "options"
)

// ChooserType — тип виджета для dashboard.
const ChooserType = "String Chooser"

// Chooser позволяет выбрать один из вариантов на dashboard.
//
// Варианты идентифицируются именами; dashboard показывает список имён
// (options) и записывает выбранное имя в "selected".
// Пока ничего не выбрано, Selected возвращает вариант по умолчанию.
type Chooser[T any] struct {
	Base

	mu            sync.RWMutex
	options       map[string]T
	defaultChoice string
	selected      string
	onChange      []func(name string, value T)
}

// NewChooser создаёт пустой Chooser.
func NewChooser[T any]() *Chooser[T] {
	return &Chooser[T]{options: make(map[string]T)}
}

// AddOption добавляет вариант. Повторное имя перезаписывает значение.
func (c *Chooser[T]) AddOption(name string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options[name] = value
}

// SetDefaultOption добавляет вариант и делает его вариантом по умолчанию.
func (c *Chooser[T]) SetDefaultOption(name string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultChoice = name
	c.options[name] = value
}

// Selected возвращает выбранный вариант (или вариант по умолчанию).
// Если нет ни того, ни другого — нулевое значение T.
func (c *Chooser[T]) Selected() T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.options[c.activeLocked()]; ok {
		return v
	}
	var zero T
	return zero
}

// SelectedName возвращает имя активного варианта.
func (c *Chooser[T]) SelectedName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeLocked()
}

// Options возвращает имена вариантов в алфавитном порядке.
func (c *Chooser[T]) Options() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.options))
	for name := range c.options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OnChange подписывается на смену выбора с dashboard.
func (c *Chooser[T]) OnChange(fn func(name string, value T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Select выбирает вариант по имени. Неизвестное имя запоминается,
// но Selected вернёт вариант по умолчанию, пока такой вариант не добавят.
func (c *Chooser[T]) Select(name string) {
	c.mu.Lock()
	if c.selected == name {
		c.mu.Unlock()
		return
	}
	c.selected = name
	value, known := c.options[name]
	callbacks := make([]func(string, T), len(c.onChange))
	copy(callbacks, c.onChange)
	c.mu.Unlock()

	if !known {
		return
	}
	for _, fn := range callbacks {
		fn(name, value)
	}
}

// InitSendable реализует Sendable.
func (c *Chooser[T]) InitSendable(b Builder) {
	b.SetSmartDashboardType(ChooserType)
	b.AddStringProperty(ChooserDefault, c.defaultName, nil)
	b.AddStringArrayProperty(ChooserOptions, c.Options, nil)
	b.AddStringProperty(ChooserActive, c.SelectedName, nil)
	b.AddStringProperty(ChooserSelected, nil, c.Select)
}

func (c *Chooser[T]) defaultName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultChoice
}

func (c *Chooser[T]) activeLocked() string {
	if c.selected != "" {
		if _, ok := c.options[c.selected]; ok {
			return c.selected
		}
	}
	return c.defaultChoice
}

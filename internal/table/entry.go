package table

import (
	"github.com/shaiso/Dashboard/internal/domain"
)

// Entry — типизированный доступ к одному пути.
//
// Get* возвращают def, если entry нет или она другого типа.
// Set* пишут с источником SourceLocal.
type Entry struct {
	inst *Instance
	path string
}

// Path возвращает полный путь entry.
func (e *Entry) Path() string {
	return e.path
}

// Name возвращает ключ entry (последний сегмент пути).
func (e *Entry) Name() string {
	_, name := domain.SplitPath(e.path)
	return name
}

// Exists проверяет, есть ли значение.
func (e *Entry) Exists() bool {
	_, ok := e.inst.Get(e.path)
	return ok
}

// Type возвращает тип значения (пустой, если entry нет).
func (e *Entry) Type() domain.ValueType {
	v, _ := e.inst.Get(e.path)
	return v.Type
}

// Value возвращает текущее значение.
func (e *Entry) Value() (domain.Value, bool) {
	return e.inst.Get(e.path)
}

// Set записывает произвольное значение.
func (e *Entry) Set(v domain.Value) error {
	return e.inst.Set(e.path, v, domain.SourceLocal)
}

// SetBoolean записывает boolean.
func (e *Entry) SetBoolean(v bool) error {
	return e.Set(domain.BooleanValue(v))
}

// SetDouble записывает double.
func (e *Entry) SetDouble(v float64) error {
	return e.Set(domain.DoubleValue(v))
}

// SetString записывает string.
func (e *Entry) SetString(v string) error {
	return e.Set(domain.StringValue(v))
}

// SetRaw записывает сырые байты.
func (e *Entry) SetRaw(v []byte) error {
	return e.Set(domain.RawValue(v))
}

// SetBooleanArray записывает массив boolean.
func (e *Entry) SetBooleanArray(v []bool) error {
	return e.Set(domain.BooleanArrayValue(v))
}

// SetDoubleArray записывает массив double.
func (e *Entry) SetDoubleArray(v []float64) error {
	return e.Set(domain.DoubleArrayValue(v))
}

// SetStringArray записывает массив string.
func (e *Entry) SetStringArray(v []string) error {
	return e.Set(domain.StringArrayValue(v))
}

// SetDefault записывает значение, только если entry ещё нет.
func (e *Entry) SetDefault(v domain.Value) (bool, error) {
	return e.inst.SetDefault(e.path, v, domain.SourceLocal)
}

// GetBoolean возвращает boolean или def.
func (e *Entry) GetBoolean(def bool) bool {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeBoolean {
		return def
	}
	return v.Boolean
}

// GetDouble возвращает double или def.
func (e *Entry) GetDouble(def float64) float64 {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeDouble {
		return def
	}
	return v.Double
}

// GetString возвращает string или def.
func (e *Entry) GetString(def string) string {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeString {
		return def
	}
	return v.String
}

// GetRaw возвращает сырые байты или def.
func (e *Entry) GetRaw(def []byte) []byte {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeRaw {
		return def
	}
	return v.Raw
}

// GetBooleanArray возвращает массив boolean или def.
func (e *Entry) GetBooleanArray(def []bool) []bool {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeBooleanArray {
		return def
	}
	return v.BooleanArray
}

// GetDoubleArray возвращает массив double или def.
func (e *Entry) GetDoubleArray(def []float64) []float64 {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeDoubleArray {
		return def
	}
	return v.DoubleArray
}

// GetStringArray возвращает массив string или def.
func (e *Entry) GetStringArray(def []string) []string {
	v, ok := e.inst.Get(e.path)
	if !ok || v.Type != domain.ValueTypeStringArray {
		return def
	}
	return v.StringArray
}

// SetPersistent помечает entry как persistent.
func (e *Entry) SetPersistent() error {
	return e.inst.SetPersistent(e.path, true, domain.SourceLocal)
}

// ClearPersistent снимает флаг persistent.
func (e *Entry) ClearPersistent() error {
	return e.inst.SetPersistent(e.path, false, domain.SourceLocal)
}

// IsPersistent возвращает флаг persistent.
func (e *Entry) IsPersistent() bool {
	return e.inst.IsPersistent(e.path)
}

// Delete удаляет entry.
func (e *Entry) Delete() bool {
	return e.inst.Delete(e.path, domain.SourceLocal)
}

// AddListener подписывается на изменения ровно этой entry.
func (e *Entry) AddListener(fn Listener) ListenerID {
	path := e.path
	return e.inst.AddListener(path, func(c domain.Change) {
		if c.Path == path {
			fn(c)
		}
	})
}

// RemoveListener отписывает listener.
func (e *Entry) RemoveListener(id ListenerID) {
	e.inst.RemoveListener(id)
}

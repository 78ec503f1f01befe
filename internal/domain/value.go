package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidValue — значение не соответствует своему типу.
var ErrInvalidValue = errors.New("invalid value")

// ValueType — тип значения entry в таблице.
//
// Набор типов совпадает с тем, что умеет отображать dashboard:
// скаляры (boolean, double, string), сырые байты и массивы скаляров.
type ValueType string

const (
	ValueTypeUnassigned   ValueType = ""
	ValueTypeBoolean      ValueType = "boolean"
	ValueTypeDouble       ValueType = "double"
	ValueTypeString       ValueType = "string"
	ValueTypeRaw          ValueType = "raw"
	ValueTypeBooleanArray ValueType = "boolean[]"
	ValueTypeDoubleArray  ValueType = "double[]"
	ValueTypeStringArray  ValueType = "string[]"
)

// IsValid возвращает true для известных типов.
func (t ValueType) IsValid() bool {
	switch t {
	case ValueTypeBoolean, ValueTypeDouble, ValueTypeString, ValueTypeRaw,
		ValueTypeBooleanArray, ValueTypeDoubleArray, ValueTypeStringArray:
		return true
	default:
		return false
	}
}

// ParseValueType парсит строку в ValueType.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(s)
	if !t.IsValid() {
		return ValueTypeUnassigned, fmt.Errorf("%w: unknown type %q", ErrInvalidValue, s)
	}
	return t, nil
}

// Value — типизированное значение entry.
//
// Заполнено только поле, соответствующее Type.
// Массивы и Raw копируются при создании, поэтому Value можно
// безопасно передавать между горутинами.
type Value struct {
	Type ValueType

	Boolean      bool
	Double       float64
	String       string
	Raw          []byte
	BooleanArray []bool
	DoubleArray  []float64
	StringArray  []string
}

// BooleanValue создаёт boolean значение.
func BooleanValue(v bool) Value {
	return Value{Type: ValueTypeBoolean, Boolean: v}
}

// DoubleValue создаёт double значение.
func DoubleValue(v float64) Value {
	return Value{Type: ValueTypeDouble, Double: v}
}

// StringValue создаёт string значение.
func StringValue(v string) Value {
	return Value{Type: ValueTypeString, String: v}
}

// RawValue создаёт raw значение.
func RawValue(v []byte) Value {
	return Value{Type: ValueTypeRaw, Raw: bytes.Clone(v)}
}

// BooleanArrayValue создаёт массив boolean.
func BooleanArrayValue(v []bool) Value {
	return Value{Type: ValueTypeBooleanArray, BooleanArray: slices.Clone(v)}
}

// DoubleArrayValue создаёт массив double.
func DoubleArrayValue(v []float64) Value {
	return Value{Type: ValueTypeDoubleArray, DoubleArray: slices.Clone(v)}
}

// StringArrayValue создаёт массив string.
func StringArrayValue(v []string) Value {
	return Value{Type: ValueTypeStringArray, StringArray: slices.Clone(v)}
}

// IsAssigned возвращает true, если значение имеет тип.
func (v Value) IsAssigned() bool {
	return v.Type != ValueTypeUnassigned
}

// Clone возвращает глубокую копию значения.
func (v Value) Clone() Value {
	c := v
	c.Raw = bytes.Clone(v.Raw)
	c.BooleanArray = slices.Clone(v.BooleanArray)
	c.DoubleArray = slices.Clone(v.DoubleArray)
	c.StringArray = slices.Clone(v.StringArray)
	return c
}

// Equal сравнивает два значения с учётом типа.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeBoolean:
		return v.Boolean == o.Boolean
	case ValueTypeDouble:
		return v.Double == o.Double
	case ValueTypeString:
		return v.String == o.String
	case ValueTypeRaw:
		return bytes.Equal(v.Raw, o.Raw)
	case ValueTypeBooleanArray:
		return slices.Equal(v.BooleanArray, o.BooleanArray)
	case ValueTypeDoubleArray:
		return slices.Equal(v.DoubleArray, o.DoubleArray)
	case ValueTypeStringArray:
		return slices.Equal(v.StringArray, o.StringArray)
	default:
		return true
	}
}

// Any возвращает значение как interface{} (для JSON и вывода).
func (v Value) Any() any {
	switch v.Type {
	case ValueTypeBoolean:
		return v.Boolean
	case ValueTypeDouble:
		return v.Double
	case ValueTypeString:
		return v.String
	case ValueTypeRaw:
		return v.Raw
	case ValueTypeBooleanArray:
		return v.BooleanArray
	case ValueTypeDoubleArray:
		return v.DoubleArray
	case ValueTypeStringArray:
		return v.StringArray
	default:
		return nil
	}
}

// Format возвращает человекочитаемое представление (для CLI и логов).
func (v Value) Format() string {
	if !v.IsAssigned() {
		return ""
	}
	if v.Type == ValueTypeString {
		return v.String
	}
	data, err := json.Marshal(v.Any())
	if err != nil {
		return fmt.Sprintf("%v", v.Any())
	}
	return string(data)
}

// wireValue — JSON-представление Value.
//
//	{"type": "double", "value": 1.5}
type wireValue struct {
	Type  ValueType       `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON реализует json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Any())
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireValue{Type: v.Type, Value: raw})
}

// UnmarshalJSON реализует json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == ValueTypeUnassigned {
		*v = Value{}
		return nil
	}

	parsed, err := DecodeValue(w.Type, w.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// DecodeValue декодирует JSON-значение указанного типа.
func DecodeValue(t ValueType, raw json.RawMessage) (Value, error) {
	if !t.IsValid() {
		return Value{}, fmt.Errorf("%w: unknown type %q", ErrInvalidValue, t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return Value{}, fmt.Errorf("%w: missing %s value", ErrInvalidValue, t)
	}

	v := Value{Type: t}
	var err error
	switch t {
	case ValueTypeBoolean:
		err = json.Unmarshal(raw, &v.Boolean)
	case ValueTypeDouble:
		err = json.Unmarshal(raw, &v.Double)
	case ValueTypeString:
		err = json.Unmarshal(raw, &v.String)
	case ValueTypeRaw:
		err = json.Unmarshal(raw, &v.Raw)
	case ValueTypeBooleanArray:
		err = json.Unmarshal(raw, &v.BooleanArray)
	case ValueTypeDoubleArray:
		err = json.Unmarshal(raw, &v.DoubleArray)
	case ValueTypeStringArray:
		err = json.Unmarshal(raw, &v.StringArray)
	}
	if err != nil {
		return Value{}, fmt.Errorf("%w: decode %s: %v", ErrInvalidValue, t, err)
	}
	return v, nil
}

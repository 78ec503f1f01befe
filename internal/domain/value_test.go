package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValue_JSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"boolean", BooleanValue(true), `{"type":"boolean","value":true}`},
		{"double", DoubleValue(1.5), `{"type":"double","value":1.5}`},
		{"string", StringValue("o1"), `{"type":"string","value":"o1"}`},
		{"string array", StringArrayValue([]string{"a", "b"}), `{"type":"string[]","value":["a","b"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, data)
			}

			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !back.Equal(tt.value) {
				t.Errorf("round trip mismatch: %+v != %+v", back, tt.value)
			}
		})
	}
}

func TestDecodeValue_Errors(t *testing.T) {
	// Неизвестный тип
	if _, err := DecodeValue("float", json.RawMessage(`1`)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	// Значение не того типа
	if _, err := DecodeValue(ValueTypeDouble, json.RawMessage(`"x"`)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}

	// Нет значения
	if _, err := DecodeValue(ValueTypeBoolean, nil); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestValue_Equal(t *testing.T) {
	if DoubleValue(1).Equal(StringValue("1")) {
		t.Error("values of different types should not be equal")
	}
	if !DoubleArrayValue([]float64{1, 2}).Equal(DoubleArrayValue([]float64{1, 2})) {
		t.Error("equal arrays should be equal")
	}
	if RawValue([]byte{1}).Equal(RawValue([]byte{2})) {
		t.Error("different raw values should not be equal")
	}
}

func TestValue_Format(t *testing.T) {
	if got := StringValue("hi").Format(); got != "hi" {
		t.Errorf("expected hi, got %s", got)
	}
	if got := DoubleArrayValue([]float64{1, 2.5}).Format(); got != "[1,2.5]" {
		t.Errorf("expected [1,2.5], got %s", got)
	}
	if got := (Value{}).Format(); got != "" {
		t.Errorf("expected empty, got %s", got)
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"SmartDashboard"}, "/SmartDashboard"},
		{[]string{"/SmartDashboard/", "speed"}, "/SmartDashboard/speed"},
		{[]string{"/a", "b/c", "", "d"}, "/a/b/c/d"},
		{[]string{""}, "/"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.parts...); got != tt.want {
			t.Errorf("JoinPath(%q) = %s, want %s", tt.parts, got, tt.want)
		}
	}

	parent, name := SplitPath("/SmartDashboard/Autonomous Mode/selected")
	if parent != "/SmartDashboard/Autonomous Mode" || name != "selected" {
		t.Errorf("unexpected split: %s %s", parent, name)
	}
	parent, name = SplitPath("speed")
	if parent != "/" || name != "speed" {
		t.Errorf("unexpected split: %s %s", parent, name)
	}
}

func TestSnapshot_Find(t *testing.T) {
	s := NewSnapshot([]Entry{
		{Path: "/SmartDashboard/speed", Value: DoubleValue(2)},
	})
	if s.EntryCount() != 1 {
		t.Errorf("expected 1 entry, got %d", s.EntryCount())
	}
	e, ok := s.Find("SmartDashboard/speed")
	if !ok || e.Value.Double != 2 {
		t.Errorf("expected speed=2, got %+v %v", e, ok)
	}
	if _, ok := s.Find("/missing"); ok {
		t.Error("should not find missing entry")
	}
}

package sendable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/table"
)

// bind повторяет то, что делает Dashboard.PutData.
func bind(t *testing.T, inst *table.Instance, key string, s Sendable) *TableBuilder {
	t.Helper()
	b := NewTableBuilder(inst.Table("SmartDashboard").SubTable(key))
	s.InitSendable(b)
	b.StartListeners()
	require.NoError(t, b.Update())
	return b
}

func remoteSet(t *testing.T, inst *table.Instance, path string, v domain.Value) {
	t.Helper()
	require.NoError(t, inst.Set(path, v, domain.SourceRemote))
}

func TestChooser_Default(t *testing.T) {
	c := NewChooser[string]()
	c.AddOption("o1", "one")
	c.AddOption("o2", "two")
	c.SetDefaultOption("o3", "three")

	assert.Equal(t, "three", c.Selected())
	assert.Equal(t, []string{"o1", "o2", "o3"}, c.Options())

	// Пустой chooser — нулевое значение
	empty := NewChooser[*int]()
	assert.Nil(t, empty.Selected())
}

func TestChooser_RemoteSelection(t *testing.T) {
	inst := table.NewInstance()

	o1, o2, o3 := new(int), new(int), new(int)
	c := NewChooser[*int]()
	c.AddOption("o1", o1)
	c.AddOption("o2", o2)
	c.SetDefaultOption("o3", o3)

	var changed []string
	c.OnChange(func(name string, _ *int) { changed = append(changed, name) })

	bind(t, inst, "Autonomous Mode", c)

	// После регистрации default всё ещё работает
	assert.Same(t, o3, c.Selected())

	sub := inst.Table("SmartDashboard").SubTable("Autonomous Mode")
	assert.Equal(t, ChooserType, sub.Entry(KeyType).GetString(""))
	assert.Equal(t, "o3", sub.Entry(ChooserDefault).GetString(""))
	assert.Equal(t, []string{"o1", "o2", "o3"}, sub.Entry(ChooserOptions).GetStringArray(nil))
	assert.True(t, sub.Entry(KeyControllable).GetBoolean(false))

	// Выбор с dashboard
	remoteSet(t, inst, sub.Entry(ChooserSelected).Path(), domain.StringValue("o1"))
	assert.Same(t, o1, c.Selected())
	assert.Equal(t, []string{"o1"}, changed)
}

func TestChooser_LocalWriteIgnored(t *testing.T) {
	inst := table.NewInstance()

	c := NewChooser[string]()
	c.AddOption("a", "A")
	c.SetDefaultOption("b", "B")
	b := bind(t, inst, "chooser", c)

	// Локальная запись не вызывает сеттер
	require.NoError(t, b.Table().Entry(ChooserSelected).SetString("a"))
	assert.Equal(t, "B", c.Selected())
}

func TestChooser_UnknownSelection(t *testing.T) {
	c := NewChooser[string]()
	c.SetDefaultOption("d", "D")

	c.Select("missing")
	assert.Equal(t, "D", c.Selected())
	assert.Equal(t, "d", c.SelectedName())

	// Вариант добавлен позже — выбор начинает действовать
	c.AddOption("missing", "M")
	assert.Equal(t, "M", c.Selected())
}

func TestAccelerometer_Update(t *testing.T) {
	inst := table.NewInstance()
	src := NewSimAccel()
	a := NewAccelerometer("BuiltInAccel", src)

	b := bind(t, inst, a.Name(), a)
	sub := b.Table()

	assert.Equal(t, AccelerometerType, sub.Entry(KeyType).GetString(""))
	assert.Equal(t, 1.0, sub.Entry("Z").GetDouble(0))

	src.Set(0.5, -0.25, 0.9)
	require.NoError(t, b.Update())

	assert.Equal(t, 0.5, sub.Entry("X").GetDouble(0))
	assert.Equal(t, -0.25, sub.Entry("Y").GetDouble(0))
	assert.Equal(t, 0.9, sub.Entry("Z").GetDouble(0))
}

func TestToggle_RemoteControlAndSafeState(t *testing.T) {
	inst := table.NewInstance()
	tg := NewToggle("Claw")
	b := bind(t, inst, tg.Name(), tg)
	sub := b.Table()

	assert.True(t, b.IsActuator())
	assert.True(t, sub.Entry(KeyActuator).GetBoolean(false))

	remoteSet(t, inst, sub.Entry("Value").Path(), domain.BooleanValue(true))
	assert.True(t, tg.Get())

	// Значение неверного типа игнорируется
	err := inst.Set(sub.Entry("Value").Path(), domain.StringValue("on"), domain.SourceRemote)
	assert.ErrorIs(t, err, table.ErrTypeMismatch)
	assert.True(t, tg.Get())

	b.StopLiveWindowMode()
	assert.False(t, tg.Get())
	assert.False(t, b.IsListening())
	assert.False(t, sub.Entry(KeyControllable).GetBoolean(true))

	// Без listeners удалённая запись не доходит до виджета
	remoteSet(t, inst, sub.Entry("Value").Path(), domain.BooleanValue(true))
	assert.False(t, tg.Get())
}

func TestTableBuilder_Close(t *testing.T) {
	inst := table.NewInstance()
	tg := NewToggle("Claw")
	before := inst.ListenerCount()

	b := bind(t, inst, tg.Name(), tg)
	assert.Greater(t, inst.ListenerCount(), before)

	b.Close()
	b.Close()

	assert.True(t, b.Closed())
	assert.Equal(t, before, inst.ListenerCount())
	assert.ErrorIs(t, b.Update(), ErrBuilderClosed)

	// Entries остаются в таблице
	assert.True(t, b.Table().ContainsKey("Value"))
}

func TestTableBuilder_UpdateErrorsCollected(t *testing.T) {
	inst := table.NewInstance()
	sub := inst.Table("SmartDashboard").SubTable("w")

	// Занимаем ключ значением другого типа
	require.NoError(t, sub.Entry("a").SetString("x"))

	b := NewTableBuilder(sub)
	b.AddDoubleProperty("a", func() float64 { return 1 }, nil)
	b.AddDoubleProperty("b", func() float64 { return 2 }, nil)

	updated := 0
	b.SetUpdateTable(func() { updated++ })

	err := b.Update()
	assert.ErrorIs(t, err, table.ErrTypeMismatch)
	assert.Equal(t, 2.0, sub.Entry("b").GetDouble(0))
	assert.Equal(t, 1, updated)
}

func TestTableBuilder_MetadataErrorsReported(t *testing.T) {
	inst := table.NewInstance()
	sub := inst.Table("SmartDashboard").SubTable("Claw")

	// .type занят числом: строковый тип записать нельзя
	require.NoError(t, sub.Entry(KeyType).SetDouble(1))

	b := NewTableBuilder(sub)
	NewToggle("Claw").InitSendable(b)
	b.StartListeners()
	t.Cleanup(b.Close)

	err := b.Update()
	require.ErrorIs(t, err, table.ErrTypeMismatch)
	assert.Contains(t, err.Error(), sub.Entry(KeyType).Path())
	assert.Equal(t, 1.0, sub.Entry(KeyType).GetDouble(0))

	// Свойства опубликованы, ошибка отдана один раз
	assert.True(t, sub.ContainsKey("Value"))
	assert.NoError(t, b.Update())
}

func TestBase_Names(t *testing.T) {
	var b Base
	b.SetNameAndSubsystem("Drivetrain", "Left Motor")
	assert.Equal(t, "Drivetrain", b.Subsystem())
	assert.Equal(t, "Left Motor", b.Name())

	var _ Named = NewToggle("x")
	var _ Named = NewChooser[int]()
}

func TestValue_Widgets(t *testing.T) {
	inst := table.NewInstance()

	voltage := 12.5
	num := NewNumber("Battery", func() float64 { return voltage })
	flag := NewFlag("Ready", func() bool { return true })
	text := NewText("Mode", func() string { return "auto" })

	bn := bind(t, inst, num.Name(), num)
	bind(t, inst, flag.Name(), flag)
	bind(t, inst, text.Name(), text)

	sd := inst.Table("SmartDashboard")
	assert.Equal(t, 12.5, sd.SubTable("Battery").Entry("Value").GetDouble(0))
	assert.True(t, sd.SubTable("Ready").Entry("Value").GetBoolean(false))
	assert.Equal(t, "auto", sd.SubTable("Mode").Entry("Value").GetString(""))
	assert.Equal(t, ValueType, sd.SubTable("Mode").Entry(KeyType).GetString(""))

	voltage = 11.9
	require.NoError(t, bn.Update())
	assert.Equal(t, 11.9, sd.SubTable("Battery").Entry("Value").GetDouble(0))
}

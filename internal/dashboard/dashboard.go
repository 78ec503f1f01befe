package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/sendable"
	"github.com/shaiso/Dashboard/internal/table"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

// DefaultTableName — имя корневой таблицы dashboard.
const DefaultTableName = "SmartDashboard"

// Config — конфигурация Dashboard.
type Config struct {
	// Instance — хранилище entries. nil — создаётся новое.
	Instance *table.Instance

	// TableName — корневая таблица. По умолчанию "SmartDashboard".
	TableName string

	// Registry — реестр виджетов. nil — создаётся новый.
	Registry *Registry

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// WidgetInfo — описание зарегистрированного виджета.
type WidgetInfo struct {
	Key  string `json:"key"`
	Type string `json:"type"`
	Refs int    `json:"refs"`
}

// Dashboard — фасад SmartDashboard.
//
// Виджеты регистрируются в Registry и привязываются к подтаблице
// с их ключом через TableBuilder. Простые значения пишутся напрямую
// в корневую таблицу.
type Dashboard struct {
	inst     *table.Instance
	tbl      *table.Table
	registry *Registry
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	// putMu сериализует PutData: проверка текущего виджета и замена
	// выполняются без вклинивания другого PutData.
	putMu sync.Mutex

	mu       sync.Mutex
	builders map[*Handle]*sendable.TableBuilder
}

// New создаёт Dashboard.
func New(cfg Config) *Dashboard {
	if cfg.Instance == nil {
		cfg.Instance = table.NewInstance()
	}
	if cfg.TableName == "" {
		cfg.TableName = DefaultTableName
	}
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Dashboard{
		inst:     cfg.Instance,
		tbl:      cfg.Instance.Table(cfg.TableName),
		registry: cfg.Registry,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		builders: make(map[*Handle]*sendable.TableBuilder),
	}
}

// Table возвращает корневую таблицу.
func (d *Dashboard) Table() *table.Table {
	return d.tbl
}

// Instance возвращает хранилище entries.
func (d *Dashboard) Instance() *table.Instance {
	return d.inst
}

// Registry возвращает реестр виджетов.
func (d *Dashboard) Registry() *Registry {
	return d.registry
}

// PutData регистрирует виджет под key.
//
// Если под key уже зарегистрирован тот же объект, ничего не делает.
// Иначе предыдущий виджет освобождается, его builder отвязывается
// от таблицы, а новый публикует свои свойства.
func (d *Dashboard) PutData(key string, data sendable.Sendable) error {
	if data == nil {
		return ErrNilData
	}
	if key == "" {
		return ErrEmptyKey
	}

	d.putMu.Lock()
	defer d.putMu.Unlock()

	if cur, ok := d.registry.Get(key); ok && sameData(cur, data) {
		return nil
	}

	logger := telemetry.WithWidgetKey(d.logger, key)

	b := sendable.NewTableBuilder(d.tbl.SubTable(key))
	data.InitSendable(b)
	if named, ok := data.(sendable.Named); ok && named.Name() != "" {
		if err := b.Table().Entry(sendable.KeyName).SetString(named.Name()); err != nil {
			logger.Warn("set widget name failed", "error", err)
		}
	}
	b.StartListeners()

	h := NewHandle(data)
	d.mu.Lock()
	d.builders[h] = b
	d.mu.Unlock()
	h.OnRelease(func() { d.detach(h) })

	if err := d.registry.Put(key, h); err != nil {
		h.Release()
		return fmt.Errorf("put %s: %w", key, err)
	}

	if err := b.Update(); err != nil {
		logger.Warn("initial widget update failed", "error", err)
	}
	logger.Debug("widget registered", "type", b.Table().Entry(sendable.KeyType).GetString(""))

	d.observeWidgets()
	return nil
}

// PutNamedData регистрирует виджет под его именем.
func (d *Dashboard) PutNamedData(data sendable.Named) error {
	if data == nil {
		return ErrNilData
	}
	return d.PutData(data.Name(), data)
}

// GetData возвращает виджет по ключу.
func (d *Dashboard) GetData(key string) (sendable.Sendable, error) {
	return d.registry.Lookup(key)
}

// RemoveData удаляет один виджет. Entries виджета в таблице остаются.
func (d *Dashboard) RemoveData(key string) bool {
	ok := d.registry.Remove(key)
	d.observeWidgets()
	return ok
}

// ClearData удаляет все виджеты и отвязывает их builders.
func (d *Dashboard) ClearData() {
	n := d.registry.Len()
	d.registry.Clear()
	d.observeWidgets()
	d.logger.Info("widgets cleared", "count", n)
}

// Widgets возвращает описание всех виджетов.
func (d *Dashboard) Widgets() []WidgetInfo {
	bindings := d.registry.Snapshot()
	defer ReleaseAll(bindings)

	infos := make([]WidgetInfo, 0, len(bindings))
	for _, bnd := range bindings {
		infos = append(infos, WidgetInfo{
			Key:  bnd.Key,
			Type: d.tbl.SubTable(bnd.Key).Entry(sendable.KeyType).GetString(""),
			// Ссылка снимка не учитывается
			Refs: bnd.Handle.Refs() - 1,
		})
	}
	return infos
}

// UpdateValues публикует текущие значения всех виджетов.
// Возвращает количество обновлённых виджетов и объединённую ошибку.
func (d *Dashboard) UpdateValues() (int, error) {
	bindings := d.registry.Snapshot()
	defer ReleaseAll(bindings)

	var (
		updated int
		errs    []error
	)
	for _, bnd := range bindings {
		b := d.builder(bnd.Handle)
		if b == nil {
			continue
		}
		if err := b.Update(); err != nil {
			if errors.Is(err, sendable.ErrBuilderClosed) {
				continue
			}
			errs = append(errs, fmt.Errorf("widget %s: %w", bnd.Key, err))
		}
		updated++
	}
	return updated, errors.Join(errs...)
}

// Entry возвращает entry корневой таблицы.
func (d *Dashboard) Entry(key string) *table.Entry {
	return d.tbl.Entry(key)
}

// PutBoolean записывает boolean.
func (d *Dashboard) PutBoolean(key string, v bool) error {
	return d.tbl.Entry(key).SetBoolean(v)
}

// GetBoolean возвращает boolean или def.
func (d *Dashboard) GetBoolean(key string, def bool) bool {
	return d.tbl.Entry(key).GetBoolean(def)
}

// PutNumber записывает число.
func (d *Dashboard) PutNumber(key string, v float64) error {
	return d.tbl.Entry(key).SetDouble(v)
}

// GetNumber возвращает число или def.
func (d *Dashboard) GetNumber(key string, def float64) float64 {
	return d.tbl.Entry(key).GetDouble(def)
}

// PutString записывает строку.
func (d *Dashboard) PutString(key string, v string) error {
	return d.tbl.Entry(key).SetString(v)
}

// GetString возвращает строку или def.
func (d *Dashboard) GetString(key string, def string) string {
	return d.tbl.Entry(key).GetString(def)
}

// PutRaw записывает сырые байты.
func (d *Dashboard) PutRaw(key string, v []byte) error {
	return d.tbl.Entry(key).SetRaw(v)
}

// GetRaw возвращает сырые байты или def.
func (d *Dashboard) GetRaw(key string, def []byte) []byte {
	return d.tbl.Entry(key).GetRaw(def)
}

func (d *Dashboard) PutBooleanArray(key string, v []bool) error {
	return d.tbl.Entry(key).SetBooleanArray(v)
}

func (d *Dashboard) GetBooleanArray(key string, def []bool) []bool {
	return d.tbl.Entry(key).GetBooleanArray(def)
}

func (d *Dashboard) PutNumberArray(key string, v []float64) error {
	return d.tbl.Entry(key).SetDoubleArray(v)
}

func (d *Dashboard) GetNumberArray(key string, def []float64) []float64 {
	return d.tbl.Entry(key).GetDoubleArray(def)
}

func (d *Dashboard) PutStringArray(key string, v []string) error {
	return d.tbl.Entry(key).SetStringArray(v)
}

func (d *Dashboard) GetStringArray(key string, def []string) []string {
	return d.tbl.Entry(key).GetStringArray(def)
}

// SetDefaultBoolean записывает boolean, только если ключа ещё нет.
func (d *Dashboard) SetDefaultBoolean(key string, v bool) (bool, error) {
	return d.tbl.Entry(key).SetDefault(domain.BooleanValue(v))
}

// SetDefaultNumber записывает число, только если ключа ещё нет.
func (d *Dashboard) SetDefaultNumber(key string, v float64) (bool, error) {
	return d.tbl.Entry(key).SetDefault(domain.DoubleValue(v))
}

// SetDefaultString записывает строку, только если ключа ещё нет.
func (d *Dashboard) SetDefaultString(key string, v string) (bool, error) {
	return d.tbl.Entry(key).SetDefault(domain.StringValue(v))
}

// ContainsKey проверяет наличие значения.
func (d *Dashboard) ContainsKey(key string) bool {
	return d.tbl.ContainsKey(key)
}

// Keys возвращает ключи значений корневой таблицы.
func (d *Dashboard) Keys() []string {
	return d.tbl.Keys()
}

// Delete удаляет значение.
func (d *Dashboard) Delete(key string) bool {
	return d.tbl.Delete(key)
}

// SetPersistent помечает значение как сохраняемое между перезапусками.
func (d *Dashboard) SetPersistent(key string) error {
	return d.tbl.Entry(key).SetPersistent()
}

// ClearPersistent снимает флаг persistent.
func (d *Dashboard) ClearPersistent(key string) error {
	return d.tbl.Entry(key).ClearPersistent()
}

// IsPersistent возвращает флаг persistent.
func (d *Dashboard) IsPersistent(key string) bool {
	return d.tbl.Entry(key).IsPersistent()
}

func (d *Dashboard) builder(h *Handle) *sendable.TableBuilder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.builders[h]
}

// detach — release-хук: отвязывает builder освобождённого виджета.
func (d *Dashboard) detach(h *Handle) {
	d.mu.Lock()
	b := d.builders[h]
	delete(d.builders, h)
	d.mu.Unlock()

	if b != nil {
		b.Close()
	}
}

func (d *Dashboard) observeWidgets() {
	if d.metrics != nil {
		d.metrics.Widgets.Set(float64(d.registry.Len()))
	}
}

// sameData сравнивает виджеты по идентичности, не паникуя
// на несравнимых типах.
func sameData(a, b sendable.Sendable) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

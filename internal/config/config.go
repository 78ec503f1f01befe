package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix = "DASHBOARD"
	fileType  = "yaml"

	// EnvConfigFile — переменная с путём к YAML-файлу конфигурации.
	EnvConfigFile = "DASHBOARD_CONFIG"
)

// Ключи конфигурации.
const (
	KeyHTTPPort          = "http_port"
	KeyDatabaseURL       = "db_url"
	KeyRabbitMQURL       = "rabbitmq_url"
	KeyPublishInterval   = "publish_interval"
	KeySnapshotCron      = "snapshot_cron"
	KeySnapshotRetention = "snapshot_retention"
	KeyTableName         = "table_name"
	KeyDemoWidgets       = "demo_widgets"
)

// ErrInvalidConfig — значение конфигурации вне допустимого диапазона.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация dashboard-сервиса.
type Config struct {
	HTTPPort    string
	DatabaseURL string
	RabbitMQURL string

	// PublishInterval — период цикла публикации.
	PublishInterval time.Duration

	// SnapshotCron — расписание снимков (пусто — снимки только по запросу).
	SnapshotCron string

	// SnapshotRetention — сколько хранить снимки (0 — бессрочно).
	SnapshotRetention time.Duration

	TableName   string
	DemoWidgets bool
}

// Load читает конфигурацию. Пустой path — путь берётся из DASHBOARD_CONFIG;
// если файла нет, используются окружение и значения по умолчанию.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv(KeyDatabaseURL, "DASHBOARD_DB_URL", "DATABASE_URL")
	_ = v.BindEnv(KeyRabbitMQURL, "DASHBOARD_RABBITMQ_URL", "RABBITMQ_URL")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(fileType)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPPort:          v.GetString(KeyHTTPPort),
		DatabaseURL:       v.GetString(KeyDatabaseURL),
		RabbitMQURL:       v.GetString(KeyRabbitMQURL),
		PublishInterval:   v.GetDuration(KeyPublishInterval),
		SnapshotCron:      v.GetString(KeySnapshotCron),
		SnapshotRetention: v.GetDuration(KeySnapshotRetention),
		TableName:         v.GetString(KeyTableName),
		DemoWidgets:       v.GetBool(KeyDemoWidgets),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения.
func (c *Config) Validate() error {
	if c.PublishInterval <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, KeyPublishInterval, c.PublishInterval)
	}
	if c.SnapshotRetention < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeySnapshotRetention)
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeyHTTPPort)
	}
	if c.TableName == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, KeyTableName)
	}
	return nil
}

// Addr возвращает адрес HTTP-сервера (":8080").
func (c *Config) Addr() string {
	return ":" + c.HTTPPort
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHTTPPort, "8090")
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyRabbitMQURL, "")
	v.SetDefault(KeyPublishInterval, 50*time.Millisecond)
	v.SetDefault(KeySnapshotCron, "")
	v.SetDefault(KeySnapshotRetention, 7*24*time.Hour)
	v.SetDefault(KeyTableName, "SmartDashboard")
	v.SetDefault(KeyDemoWidgets, true)
}

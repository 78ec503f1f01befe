// Package config загружает конфигурацию dashboard-сервиса.
//
// Источники (по убыванию приоритета): переменные окружения с префиксом
// DASHBOARD_, YAML-файл (путь из DASHBOARD_CONFIG), значения по умолчанию.
// Для совместимости с остальными сервисами также читаются DATABASE_URL
// и RABBITMQ_URL.
package config

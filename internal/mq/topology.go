package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeTelemetry Exchange = "dashboard.telemetry"
	ExchangeCommands  Exchange = "dashboard.commands"
	ExchangeDLQ       Exchange = "dashboard.dlq"
)

// Queues — имена очередей.
const (
	QueueTelemetryRecord  Queue = "telemetry.record"
	QueueCommandsEntrySet Queue = "commands.entry-set"
	QueueDLQCommands      Queue = "dlq.commands"
)

// Routing keys.
const (
	RoutingKeyEntriesUpdated RoutingKey = "entries.updated"
	RoutingKeyEntriesCleared RoutingKey = "entries.cleared"
	RoutingKeySnapshotTaken  RoutingKey = "snapshot.taken"
	RoutingKeyTelemetryAll   RoutingKey = "#"
	RoutingKeyEntrySet       RoutingKey = "entry-set"
	RoutingKeyDLQCommands    RoutingKey = "commands"
)

type exchangeDecl struct {
	name Exchange
	kind string
}

type queueDecl struct {
	name Queue
	args amqp.Table
}

type bindingDecl struct {
	queue      Queue
	routingKey RoutingKey
	exchange   Exchange
}

// topology описывает все объекты RabbitMQ сервиса.
func topology() ([]exchangeDecl, []queueDecl, []bindingDecl) {
	exchanges := []exchangeDecl{
		// telemetry — topic: viewers подписываются на нужные события
		{ExchangeTelemetry, amqp.ExchangeTopic},
		{ExchangeCommands, amqp.ExchangeDirect},
		{ExchangeDLQ, amqp.ExchangeDirect},
	}

	queues := []queueDecl{
		// telemetry.record — запись истории; ограничена по длине,
		// старые события вытесняются
		{QueueTelemetryRecord, amqp.Table{
			"x-max-length": int32(10000),
			"x-overflow":   "drop-head",
		}},

		// commands.entry-set — команды записи с DLQ
		{QueueCommandsEntrySet, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQCommands),
		}},

		{QueueDLQCommands, nil},
	}

	bindings := []bindingDecl{
		{QueueTelemetryRecord, RoutingKeyTelemetryAll, ExchangeTelemetry},
		{QueueCommandsEntrySet, RoutingKeyEntrySet, ExchangeCommands},
		{QueueDLQCommands, RoutingKeyDLQCommands, ExchangeDLQ},
	}

	return exchanges, queues, bindings
}

// SetupTopology объявляет exchanges, queues и bindings.
// Повторный вызов безопасен.
func SetupTopology(ctx context.Context, conn *Connection) error {
	exchanges, queues, bindings := topology()

	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				string(ex.name), // name
				ex.kind,         // type
				true,            // durable
				false,           // auto-deleted
				false,           // internal
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		for _, q := range queues {
			_, err := ch.QueueDeclare(
				string(q.name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.args,         // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		for _, b := range bindings {
			err := ch.QueueBind(
				string(b.queue),      // queue name
				string(b.routingKey), // routing key
				string(b.exchange),   // exchange
				false,                // no-wait
				nil,                  // arguments
			)
			if err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Dashboard RabbitMQ Topology:

    dashboard.telemetry (topic)
    └── telemetry.record [routing: #]
            entries.updated, entries.cleared, snapshot.taken

    dashboard.commands (direct)
    └── commands.entry-set [routing: entry-set]
            Consumer: dashboard-server
            DLQ: dlq.commands

    dashboard.dlq (direct)
    └── dlq.commands [routing: commands]
            Manual processing
  `
}

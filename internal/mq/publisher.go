package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Dashboard/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeEntriesUpdated MessageType = "entries.updated"
	MessageTypeEntriesCleared MessageType = "entries.cleared"
	MessageTypeSnapshotTaken  MessageType = "snapshot.taken"
	MessageTypeEntrySet       MessageType = "entry.set"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// EntriesUpdatedPayload — пачка изменений entries за один цикл публикации.
type EntriesUpdatedPayload struct {
	Table   string          `json:"table"`
	Seq     uint64          `json:"seq"`
	Changes []domain.Change `json:"changes"`
}

// EntriesClearedPayload — виджеты удалены с dashboard.
type EntriesClearedPayload struct {
	Keys []string `json:"keys"`
}

// SnapshotTakenPayload — снимок сохранён.
type SnapshotTakenPayload struct {
	SnapshotID uuid.UUID `json:"snapshot_id"`
	EntryCount int       `json:"entry_count"`
	TakenAt    time.Time `json:"taken_at"`
}

// EntrySetPayload — команда записи от dashboard.
//
// Delete=true удаляет entry; иначе записывается Value.
// Persistent, если задан, меняет флаг после записи.
type EntrySetPayload struct {
	Path       string        `json:"path"`
	Value      *domain.Value `json:"value,omitempty"`
	Delete     bool          `json:"delete,omitempty"`
	Persistent *bool         `json:"persistent,omitempty"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message, persistent bool) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	mode := amqp.Transient
	if persistent {
		mode = amqp.Persistent
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,              // mandatory
			false,              // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: mode,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishEntriesUpdated публикует пачку изменений.
// Телеметрия часто обновляется, поэтому сообщения не persistent.
func (p *Publisher) PublishEntriesUpdated(ctx context.Context, table string, seq uint64, changes []domain.Change) error {
	msg := NewMessage(MessageTypeEntriesUpdated, EntriesUpdatedPayload{
		Table:   table,
		Seq:     seq,
		Changes: changes,
	})
	return p.Publish(ctx, ExchangeTelemetry, RoutingKeyEntriesUpdated, msg, false)
}

// PublishEntriesCleared публикует событие очистки виджетов.
func (p *Publisher) PublishEntriesCleared(ctx context.Context, keys []string) error {
	msg := NewMessage(MessageTypeEntriesCleared, EntriesClearedPayload{Keys: keys})
	return p.Publish(ctx, ExchangeTelemetry, RoutingKeyEntriesCleared, msg, true)
}

// PublishSnapshotTaken публикует событие о сохранённом снимке.
func (p *Publisher) PublishSnapshotTaken(ctx context.Context, snap *domain.Snapshot) error {
	msg := NewMessage(MessageTypeSnapshotTaken, SnapshotTakenPayload{
		SnapshotID: snap.ID,
		EntryCount: snap.EntryCount(),
		TakenAt:    snap.TakenAt,
	})
	return p.Publish(ctx, ExchangeTelemetry, RoutingKeySnapshotTaken, msg, true)
}

// PublishEntrySet отправляет команду записи (для внешних клиентов и тестов).
func (p *Publisher) PublishEntrySet(ctx context.Context, payload EntrySetPayload) error {
	msg := NewMessage(MessageTypeEntrySet, payload)
	return p.Publish(ctx, ExchangeCommands, RoutingKeyEntrySet, msg, true)
}

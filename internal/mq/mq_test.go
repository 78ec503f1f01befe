package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/sendable"
	"github.com/shaiso/Dashboard/internal/table"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// roundTrip повторяет путь сообщения: publisher → JSON → consumer.
func roundTrip(t *testing.T, msg *Message) *Delivery {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	var back Message
	require.NoError(t, json.Unmarshal(body, &back))
	return &Delivery{Message: back}
}

func boolPtr(b bool) *bool { return &b }

func TestEntryCommandHandler_SetReachesWidget(t *testing.T) {
	inst := table.NewInstance()

	chooser := sendable.NewChooser[string]()
	chooser.AddOption("o1", "one")
	chooser.SetDefaultOption("o3", "three")

	b := sendable.NewTableBuilder(inst.Table("SmartDashboard").SubTable("Autonomous Mode"))
	chooser.InitSendable(b)
	b.StartListeners()
	require.NoError(t, b.Update())

	v := domain.StringValue("o1")
	msg := NewMessage(MessageTypeEntrySet, EntrySetPayload{
		Path:  "/SmartDashboard/Autonomous Mode/selected",
		Value: &v,
	})

	var applied []error
	h := EntryCommandHandler(inst, discard, func(err error) { applied = append(applied, err) })

	require.NoError(t, h(context.Background(), roundTrip(t, msg)))
	assert.Equal(t, "one", chooser.Selected())
	assert.Equal(t, []error{nil}, applied)
}

func TestEntryCommandHandler_PermanentErrors(t *testing.T) {
	inst := table.NewInstance()
	require.NoError(t, inst.Entry("/SmartDashboard/speed").SetDouble(1))
	h := EntryCommandHandler(inst, discard, nil)

	wrongType := domain.StringValue("fast")
	tests := []struct {
		name string
		msg  *Message
	}{
		{"type mismatch", NewMessage(MessageTypeEntrySet, EntrySetPayload{Path: "/SmartDashboard/speed", Value: &wrongType})},
		{"empty path", NewMessage(MessageTypeEntrySet, EntrySetPayload{Path: "/", Value: &wrongType})},
		{"nothing to apply", NewMessage(MessageTypeEntrySet, EntrySetPayload{Path: "/SmartDashboard/speed"})},
		{"persist missing", NewMessage(MessageTypeEntrySet, EntrySetPayload{Path: "/missing", Persistent: boolPtr(true)})},
		{"wrong message type", NewMessage(MessageTypeEntriesCleared, EntriesClearedPayload{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h(context.Background(), roundTrip(t, tt.msg))
			assert.ErrorIs(t, err, ErrPermanent)
			assert.Equal(t, actionDeadLetter, decide(err, false))
		})
	}

	assert.Equal(t, 1.0, inst.Entry("/SmartDashboard/speed").GetDouble(0))
}

func TestApplyEntrySet_DeleteAndPersist(t *testing.T) {
	inst := table.NewInstance()
	require.NoError(t, inst.Entry("/SmartDashboard/gain").SetDouble(0.5))

	require.NoError(t, ApplyEntrySet(inst, EntrySetPayload{Path: "SmartDashboard/gain", Persistent: boolPtr(true)}))
	assert.True(t, inst.IsPersistent("/SmartDashboard/gain"))

	require.NoError(t, ApplyEntrySet(inst, EntrySetPayload{Path: "/SmartDashboard/gain", Delete: true}))
	_, ok := inst.Get("/SmartDashboard/gain")
	assert.False(t, ok)
}

func TestDecide(t *testing.T) {
	transient := errors.New("db down")

	assert.Equal(t, actionAck, decide(nil, false))
	assert.Equal(t, actionRequeue, decide(transient, false))
	assert.Equal(t, actionDeadLetter, decide(transient, true))
	assert.Equal(t, actionDeadLetter, decide(ErrPermanent, false))
}

func TestTopology_BindingsReferenceDeclared(t *testing.T) {
	exchanges, queues, bindings := topology()

	declaredEx := make(map[Exchange]bool)
	for _, ex := range exchanges {
		declaredEx[ex.name] = true
	}
	declaredQ := make(map[Queue]bool)
	for _, q := range queues {
		declaredQ[q.name] = true
	}

	for _, b := range bindings {
		assert.True(t, declaredEx[b.exchange], "exchange %s not declared", b.exchange)
		assert.True(t, declaredQ[b.queue], "queue %s not declared", b.queue)
	}
}

func TestEntriesUpdatedPayload_JSON(t *testing.T) {
	msg := NewMessage(MessageTypeEntriesUpdated, EntriesUpdatedPayload{
		Table: "/SmartDashboard",
		Seq:   7,
		Changes: []domain.Change{
			{Path: "/SmartDashboard/speed", Kind: domain.ChangeKindSet, Value: domain.DoubleValue(2), Seq: 7},
			{Path: "/SmartDashboard/old", Kind: domain.ChangeKindDelete, Seq: 6},
		},
	})

	d := roundTrip(t, msg)
	payload, err := ParsePayload[EntriesUpdatedPayload](&d.Message)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), payload.Seq)
	require.Len(t, payload.Changes, 2)
	assert.Equal(t, 2.0, payload.Changes[0].Value.Double)
	assert.Equal(t, domain.ChangeKindDelete, payload.Changes[1].Kind)
}

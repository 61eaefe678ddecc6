package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/aragel-soft/chulada-pos-sub001/internal/events"
)

type stubStore struct {
	lastTopic     string
	lastAggregate uuid.UUID
	lastPayload   []byte
	err           error
}

func (s *stubStore) Insert(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	s.lastTopic = topic
	s.lastAggregate = aggregateID
	s.lastPayload = payload
	if s.err != nil {
		return events.Event{}, s.err
	}
	return events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     json.RawMessage(payload),
		OccurredAt:  time.Now(),
	}, nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return c.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{notifier}}

	aggregate := uuid.New()
	ev, err := bus.Emit(context.Background(), events.TopicSaleCompleted, aggregate, map[string]any{"total": 2700})
	require.NoError(t, err)
	require.Equal(t, events.TopicSaleCompleted, store.lastTopic)
	require.Equal(t, aggregate, store.lastAggregate)
	require.JSONEq(t, `{"total":2700}`, string(store.lastPayload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, ev.ID, notifier.events[0].ID)
}

func TestEmitNilPayloadBecomesEmptyObject(t *testing.T) {
	store := &stubStore{}
	bus := &events.Bus{Store: store}

	_, err := bus.Emit(context.Background(), events.TopicTicketClosed, uuid.New(), nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(store.lastPayload))
}

func TestEmitValidatesInput(t *testing.T) {
	bus := &events.Bus{Store: &stubStore{}}
	ctx := context.Background()

	_, err := bus.Emit(ctx, "", uuid.New(), nil)
	require.Error(t, err)

	_, err = bus.Emit(ctx, events.TopicTicketOpened, uuid.Nil, nil)
	require.Error(t, err)

	_, err = bus.Emit(ctx, events.TopicTicketOpened, uuid.New(), []byte("not json"))
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	store := &stubStore{}
	bad := &captureNotifier{err: errors.New("sink down")}
	good := &captureNotifier{}
	bus := &events.Bus{Store: store, Notifiers: []events.Notifier{bad, good}}

	ev, err := bus.Emit(context.Background(), events.TopicStockLow, uuid.New(), nil)
	require.Error(t, err)
	require.NotEqual(t, uuid.Nil, ev.ID, "the event is persisted even when a notifier fails")
	require.Len(t, good.events, 1)
}

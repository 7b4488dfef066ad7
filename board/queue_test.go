package board

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestEventQueueOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emitter := newTestEmitter()
	dashboard := NewDashboardWithDefaults(emitter, &NopRenderer{})
	queue := NewEventQueue(ctx, 16)

	for _, event := range []Event{
		&ConnectedEvent{ConnectionId: NewId()},
		&NewObjectEvent{ObjectId: "a"},
		&IdAssignedEvent{ClientId: 3},
		&UpdateEvent{Payload: textPayload("a", "One", "x")},
		// errors are logged, the queue continues
		&InactiveEvent{ObjectId: "missing"},
		&UpdateEvent{Payload: textPayload("a", "One", "y")},
	} {
		assert.Equal(t, queue.Post(event), nil)
	}

	assert.Equal(t, queue.Drain(dashboard), 6)
	assert.Equal(t, queue.Drain(dashboard), 0)

	view, ok := dashboard.Objects().Get("a")
	assert.Equal(t, ok, true)
	assert.Equal(t, view.Content.(*TextView).Lines, []string{"y"})
	assert.Equal(t, emitter.Events(), []EventName{EventJoin, EventSubscribe})
}

func TestEventQueueRunClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dashboard := NewDashboardWithDefaults(newTestEmitter(), &NopRenderer{})
	queue := NewEventQueue(ctx, 4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		queue.Run(dashboard)
	}()

	queue.Post(&UpdateEvent{Payload: textPayload("a", "One", "x")})
	// handled after the update on the single consumer
	check := make(chan bool, 1)
	queue.Post(&checkEvent{result: check})

	select {
	case contains := <-check:
		assert.Equal(t, contains, true)
	case <-time.After(5 * time.Second):
		t.Fatal("events not handled")
	}

	queue.Close()
	<-done

	assert.Equal(t, queue.Post(&ConnectedEvent{}), ErrClosed)
}

type checkEvent struct {
	result chan bool
}

func (self *checkEvent) Apply(dashboard *Dashboard) error {
	self.result <- dashboard.Objects().Contains("a")
	return nil
}

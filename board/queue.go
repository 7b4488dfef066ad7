package board

import (
	"context"

	"github.com/golang/glog"
)

// accepts events from any goroutine
type EventSink interface {
	Post(event Event) error
}

// the single consumer of dashboard events.
// events run in arrival order, each to completion before the next.
type EventQueue struct {
	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
}

func NewEventQueue(ctx context.Context, size int) *EventQueue {
	cancelCtx, cancel := context.WithCancel(ctx)
	return &EventQueue{
		ctx:    cancelCtx,
		cancel: cancel,
		events: make(chan Event, size),
	}
}

// blocks while the queue is full
func (self *EventQueue) Post(event Event) error {
	select {
	case <-self.ctx.Done():
		return ErrClosed
	default:
	}
	select {
	case <-self.ctx.Done():
		return ErrClosed
	case self.events <- event:
		return nil
	}
}

// runs until the queue is closed. must be called from exactly one goroutine.
func (self *EventQueue) Run(dashboard *Dashboard) {
	for {
		select {
		case <-self.ctx.Done():
			return
		case event := <-self.events:
			handle(dashboard, event)
		}
	}
}

// handles the events already queued, without waiting for more
func (self *EventQueue) Drain(dashboard *Dashboard) int {
	n := 0
	for {
		select {
		case event := <-self.events:
			handle(dashboard, event)
			n += 1
		default:
			return n
		}
	}
}

func (self *EventQueue) Done() <-chan struct{} {
	return self.ctx.Done()
}

func (self *EventQueue) Close() {
	self.cancel()
}

func handle(dashboard *Dashboard, event Event) {
	if err := dashboard.Handle(event); err != nil {
		// the dashboard stays available
		glog.Infof("[q]%T error = %s\n", event, err)
	}
}

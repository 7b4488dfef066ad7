package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

func testJwt(t *testing.T) string {
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub":         "dash",
		"client_name": "test",
	})
	signed, err := token.SignedString([]byte("secret"))
	assert.Equal(t, err, nil)
	return signed
}

func TestClientAuth(t *testing.T) {
	jwt := testJwt(t)

	byJwt, err := ParseByJwtUnverified(jwt)
	assert.Equal(t, err, nil)
	assert.Equal(t, byJwt.Subject, "dash")
	assert.Equal(t, byJwt.ClientName, "test")

	_, err = ParseByJwtUnverified("not a jwt")
	assert.NotEqual(t, err, nil)

	auth := &ClientAuth{ByJwt: jwt}
	assert.Equal(t, auth.Header().Get("Authorization"), "Bearer "+jwt)

	var noAuth *ClientAuth
	assert.Equal(t, len(noAuth.Header()), 0)
}

func testWsTransportSettings(codec Codec) *WsTransportSettings {
	settings := DefaultWsTransportSettings()
	settings.ReconnectTimeout = 10 * time.Millisecond
	settings.MaxReconnectTimeout = 50 * time.Millisecond
	settings.PingTimeout = 50 * time.Millisecond
	settings.Codec = codec
	return settings
}

// polls the dashboard through the queue until `test` holds
func waitForDashboard(t *testing.T, queue *EventQueue, test func(*Dashboard) bool) {
	t.Helper()
	end := time.Now().Add(10 * time.Second)
	for time.Now().Before(end) {
		result := make(chan bool, 1)
		queue.Post(&testCheckEvent{test: test, result: result})
		select {
		case ok := <-result:
			if ok {
				return
			}
		case <-time.After(time.Second):
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timeout")
}

type testCheckEvent struct {
	test   func(*Dashboard) bool
	result chan bool
}

func (self *testCheckEvent) Apply(dashboard *Dashboard) error {
	self.result <- self.test(dashboard)
	return nil
}

func TestWsTransport(t *testing.T) {
	for _, codecName := range []string{CodecJson, CodecMsgpack, CodecProto} {
		testWsTransport(t, codecName)
	}
}

func testWsTransport(t *testing.T, codecName string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	codec, err := CodecByName(codecName)
	assert.Equal(t, err, nil)

	jwt := testJwt(t)

	received := make(chan *Frame, 32)
	authorizations := make(chan string, 8)
	var connectionCount atomic.Int32

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorizations <- r.Header.Get("Authorization")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		n := connectionCount.Add(1)

		write := func(event EventName, data any) {
			b, _ := codec.Encode(RequireFrame(event, data))
			ws.WriteMessage(codec.MessageType(), b)
		}
		read := func() *Frame {
			for {
				_, message, err := ws.ReadMessage()
				if err != nil {
					return nil
				}
				if len(message) == 0 {
					// ping
					continue
				}
				frame, err := codec.Decode(message)
				if err != nil {
					return nil
				}
				return frame
			}
		}

		frame := read()
		if frame == nil {
			return
		}
		received <- frame

		if n == 1 {
			write(EventIdAssigned, 7)
			write(EventUpdate, textPayload("a", "One", "x"))
			ws.WriteMessage(websocket.BinaryMessage, []byte{})
			write("bogus", "x")
			write(EventNewObjectAvailable, "b")
			if frame := read(); frame != nil {
				received <- frame
			}
			// drop the connection
			return
		}

		write(EventIdAssigned, 8)
		for read() != nil {
		}
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")

	settings := DefaultDashboardSettings()
	queue := NewEventQueue(ctx, settings.EventQueueSize)
	transport := NewWsTransport(ctx, url, &ClientAuth{ByJwt: jwt}, queue, testWsTransportSettings(codec))
	defer transport.Close()
	dashboard := NewDashboard(transport, &NopRenderer{}, settings)
	go queue.Run(dashboard)
	defer queue.Close()

	next := func() *Frame {
		select {
		case frame := <-received:
			return frame
		case <-time.After(10 * time.Second):
			t.Fatal("timeout")
			return nil
		}
	}

	assert.Equal(t, next().Event, EventJoin)

	subscribe := next()
	assert.Equal(t, subscribe.Event, EventSubscribe)
	var subscribeRequest SubscribeRequest
	err = json.Unmarshal(subscribe.Data, &subscribeRequest)
	assert.Equal(t, err, nil)
	assert.Equal(t, subscribeRequest, SubscribeRequest{ObjectId: "b", ClientId: 7})

	// reconnect joins again and gets a new identity
	assert.Equal(t, next().Event, EventJoin)
	waitForDashboard(t, queue, func(dashboard *Dashboard) bool {
		clientId, ok := dashboard.Session().ClientId()
		return ok && clientId == 8
	})

	// local state survives the reconnect
	waitForDashboard(t, queue, func(dashboard *Dashboard) bool {
		view, ok := dashboard.Objects().Get("a")
		return ok && view.Content.(*TextView).Lines[0] == "x"
	})

	assert.Equal(t, <-authorizations, "Bearer "+jwt)
	assert.Equal(t, transport.IsConnected(), true)

	transport.Close()
	select {
	case <-transport.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("timeout")
	}
}

func TestWsTransportNotConnected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := NewEventQueue(ctx, 8)
	// nothing listens here
	transport := NewWsTransport(ctx, "ws://127.0.0.1:1/", nil, queue, testWsTransportSettings(&JsonCodec{}))
	defer transport.Close()

	err := transport.Emit(EventJoin, nil)
	assert.Equal(t, errors.Is(err, ErrNotConnected), true)
	assert.Equal(t, transport.IsConnected(), false)
}

// records the type of each posted event. an identity is held in `Post`
// until `release` is closed, as a full queue would.
type testHoldingSink struct {
	release chan struct{}

	stateLock sync.Mutex
	events    []string
}

func (self *testHoldingSink) Post(event Event) error {
	name := fmt.Sprintf("%T", event)
	if connectionEvent, ok := event.(*ConnectionEvent); ok {
		name = fmt.Sprintf("%T", connectionEvent.Event)
		if _, ok := connectionEvent.Event.(*IdAssignedEvent); ok {
			<-self.release
		}
	}
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	self.events = append(self.events, name)
	return nil
}

func (self *testHoldingSink) Events() []string {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	events := make([]string, len(self.events))
	copy(events, self.events)
	return events
}

func TestWsTransportDisconnectAfterLastEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	codec := &JsonCodec{}
	var connectionCount atomic.Int32

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if 1 < connectionCount.Add(1) {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b, _ := codec.Encode(RequireFrame(EventIdAssigned, 7))
		ws.WriteMessage(codec.MessageType(), b)
		// drop the connection without a close frame
		ws.Close()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")

	sink := &testHoldingSink{
		release: make(chan struct{}),
	}
	settings := testWsTransportSettings(codec)
	settings.PingTimeout = 10 * time.Millisecond
	transport := NewWsTransport(ctx, url, nil, sink, settings)
	defer transport.Close()

	// the connection fails while the identity is held
	time.Sleep(200 * time.Millisecond)
	close(sink.release)

	end := time.Now().Add(10 * time.Second)
	for len(sink.Events()) < 3 && time.Now().Before(end) {
		time.Sleep(10 * time.Millisecond)
	}
	events := sink.Events()
	assert.Equal(t, len(events), 3)
	assert.Equal(t, events, []string{
		"*board.ConnectedEvent",
		"*board.IdAssignedEvent",
		"*board.DisconnectedEvent",
	})
}

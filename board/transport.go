package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// the transport collaborator: a websocket to the producer with reconnect.
// inbound frames are decoded to events and posted to the sink in arrival
// order, bracketed by `ConnectedEvent` and `DisconnectedEvent` per connection.
// each connection has its own id, and its inbound events carry it.
// outbound events are fire and forget.

type WsTransportSettings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	// an empty frame is sent after this long without a send
	PingTimeout time.Duration
	// reconnect backoff bounds
	ReconnectTimeout    time.Duration
	MaxReconnectTimeout time.Duration
	SendBufferSize      int
	Codec               Codec
}

func DefaultWsTransportSettings() *WsTransportSettings {
	return &WsTransportSettings{
		HandshakeTimeout:    5 * time.Second,
		WriteTimeout:        5 * time.Second,
		ReadTimeout:         30 * time.Second,
		PingTimeout:         10 * time.Second,
		ReconnectTimeout:    1 * time.Second,
		MaxReconnectTimeout: 30 * time.Second,
		SendBufferSize:      32,
		Codec:               &JsonCodec{},
	}
}

type WsTransport struct {
	ctx    context.Context
	cancel context.CancelFunc

	url      string
	auth     *ClientAuth
	sink     EventSink
	settings *WsTransportSettings

	stateLock sync.Mutex
	// nil while disconnected
	send chan []byte

	log LogFunction
}

func NewWsTransportWithDefaults(ctx context.Context, url string, auth *ClientAuth, sink EventSink) *WsTransport {
	return NewWsTransport(ctx, url, auth, sink, DefaultWsTransportSettings())
}

func NewWsTransport(
	ctx context.Context,
	url string,
	auth *ClientAuth,
	sink EventSink,
	settings *WsTransportSettings,
) *WsTransport {
	cancelCtx, cancel := context.WithCancel(ctx)
	transport := &WsTransport{
		ctx:      cancelCtx,
		cancel:   cancel,
		url:      url,
		auth:     auth,
		sink:     sink,
		settings: settings,
		log:      LogFn(LogLevelDebug, "transport"),
	}
	go HandleError(transport.run, transport.cancel)
	return transport
}

// Emitter implementation
func (self *WsTransport) Emit(event EventName, data any) error {
	frame, err := NewFrame(event, data)
	if err != nil {
		return err
	}
	b, err := self.settings.Codec.Encode(frame)
	if err != nil {
		return err
	}

	self.stateLock.Lock()
	defer self.stateLock.Unlock()

	if self.send == nil {
		return fmt.Errorf("%s: %w", event, ErrNotConnected)
	}
	select {
	case self.send <- b:
		glog.V(2).Infof("[t]%s->\n", event)
		return nil
	default:
		return fmt.Errorf("%s: send buffer full", event)
	}
}

func (self *WsTransport) IsConnected() bool {
	self.stateLock.Lock()
	defer self.stateLock.Unlock()
	return self.send != nil
}

func (self *WsTransport) Done() <-chan struct{} {
	return self.ctx.Done()
}

func (self *WsTransport) Close() {
	self.cancel()
}

func (self *WsTransport) run() {
	defer self.cancel()

	if self.auth != nil && self.auth.ByJwt != "" {
		if byJwt, err := ParseByJwtUnverified(self.auth.ByJwt); err == nil {
			self.log("auth as %s (%s)", byJwt.Subject, byJwt.ClientName)
		} else {
			glog.Infof("[t]auth token is not a jwt = %s\n", err)
		}
	}

	reconnect := backoff.NewExponentialBackOff()
	reconnect.InitialInterval = self.settings.ReconnectTimeout
	reconnect.MaxInterval = self.settings.MaxReconnectTimeout
	// retry forever
	reconnect.MaxElapsedTime = 0
	reconnect.Reset()

	for {
		var ws *websocket.Conn
		var err error
		if glog.V(2) {
			ws, err = TraceWithReturnError(fmt.Sprintf("[t]connect %s", self.url), self.connect)
		} else {
			ws, err = self.connect()
		}
		if err != nil {
			glog.Infof("[t]connect %s error = %s\n", self.url, err)
			select {
			case <-self.ctx.Done():
				return
			case <-time.After(reconnect.NextBackOff()):
				continue
			}
		}
		reconnect.Reset()

		if glog.V(2) {
			Trace(fmt.Sprintf("[t]connection %s", self.url), func() {
				self.handle(ws)
			})
		} else {
			self.handle(ws)
		}

		select {
		case <-self.ctx.Done():
			return
		case <-time.After(reconnect.NextBackOff()):
		}
	}
}

func (self *WsTransport) connect() (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: self.settings.HandshakeTimeout,
	}
	ws, _, err := dialer.DialContext(self.ctx, self.url, self.auth.Header())
	return ws, err
}

// runs one connection until it fails or the transport closes
func (self *WsTransport) handle(ws *websocket.Conn) {
	defer ws.Close()

	connectionId := NewId()
	log := SubLogFn(self.log, connectionId.String())

	handleCtx, handleCancel := context.WithCancel(self.ctx)
	defer handleCancel()

	send := make(chan []byte, self.settings.SendBufferSize)

	// sends are accepted before the sink sees the connect,
	// so the `join` sent on connect is never dropped
	func() {
		self.stateLock.Lock()
		defer self.stateLock.Unlock()
		self.send = send
	}()
	connected := false
	defer func() {
		func() {
			self.stateLock.Lock()
			defer self.stateLock.Unlock()
			self.send = nil
		}()
		if connected {
			self.sink.Post(&DisconnectedEvent{ConnectionId: connectionId})
		}
	}()

	// the sink sees the connect before any frame of this connection
	if err := self.sink.Post(&ConnectedEvent{ConnectionId: connectionId}); err != nil {
		return
	}
	connected = true

	log("connected %s", self.url)

	go HandleError(func() {
		defer handleCancel()

		for {
			select {
			case <-handleCtx.Done():
				return
			case message := <-send:
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(self.settings.Codec.MessageType(), message); err != nil {
					// note that for websocket a dealine timeout cannot be recovered
					glog.Infof("[ts]-> error = %s\n", err)
					return
				}
			case <-time.After(self.settings.PingTimeout):
				ws.SetWriteDeadline(time.Now().Add(self.settings.WriteTimeout))
				if err := ws.WriteMessage(websocket.BinaryMessage, make([]byte, 0)); err != nil {
					return
				}
			}
		}
	}, handleCancel)

	readerDone := make(chan struct{})
	go HandleError(func() {
		defer close(readerDone)
		defer handleCancel()

		for {
			select {
			case <-handleCtx.Done():
				return
			default:
			}

			ws.SetReadDeadline(time.Now().Add(self.settings.ReadTimeout))
			messageType, message, err := ws.ReadMessage()
			if err != nil {
				glog.Infof("[tr]<- error = %s\n", err)
				return
			}

			switch messageType {
			case websocket.TextMessage, websocket.BinaryMessage:
				if 0 == len(message) {
					// ping
					continue
				}
				frame, err := self.settings.Codec.Decode(message)
				if err != nil {
					glog.Infof("[tr]drop undecodable frame = %s\n", err)
					continue
				}
				event, err := DecodeEvent(frame)
				if err != nil {
					glog.Infof("[tr]drop %s = %s\n", frame.Event, err)
					continue
				}
				glog.V(2).Infof("[tr]%s<-\n", frame.Event)
				err = self.sink.Post(&ConnectionEvent{
					ConnectionId: connectionId,
					Event:        event,
				})
				if err != nil {
					return
				}
			default:
				glog.V(2).Infof("[tr]other=%d<-\n", messageType)
			}
		}
	}, handleCancel)

	<-handleCtx.Done()
	// unblocks a pending read. the disconnect is posted only after the
	// reader has posted its last event.
	ws.Close()
	<-readerDone
	log("disconnected %s", self.url)
}

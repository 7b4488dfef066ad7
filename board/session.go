package board

import (
	"github.com/golang/glog"
)

// sends an event to the producer. fire and forget: delivery and retry are
// owned by the transport, the caller only logs a returned error.
type Emitter interface {
	Emit(event EventName, data any) error
}

// an emitter that sends nothing, for offline dashboards
type NopEmitter struct {
}

func (self *NopEmitter) Emit(event EventName, data any) error {
	return nil
}

func emit(emitter Emitter, event EventName, data any) {
	if err := emitter.Emit(event, data); err != nil {
		glog.Infof("[s]emit %s error = %s\n", event, err)
	}
}

// session identity manager.
// the identity is unset until the producer answers `join` with `id assigned`,
// and reset when the transport disconnects. work that needs the identity is
// deferred until one exists, then tagged with the identity current at send time.
type Session struct {
	emitter Emitter

	// the transport connection events are accepted from
	connected  bool
	connection Id

	identified bool
	clientId   ClientId

	deferred []func(ClientId)

	log LogFunction
}

func NewSession(emitter Emitter) *Session {
	return &Session{
		emitter:  emitter,
		deferred: []func(ClientId){},
		log:      LogFn(LogLevelDebug, "session"),
	}
}

func (self *Session) ClientId() (ClientId, bool) {
	return self.clientId, self.identified
}

func (self *Session) RequireClientId() (ClientId, error) {
	if !self.identified {
		return 0, ErrNoIdentity
	}
	return self.clientId, nil
}

func (self *Session) Connection() (Id, bool) {
	return self.connection, self.connected
}

// events of any other connection are stale
func (self *Session) IsCurrent(connection Id) bool {
	return self.connected && self.connection == connection
}

func (self *Session) PendingCount() int {
	return len(self.deferred)
}

// transport connected
func (self *Session) Connected(connection Id) {
	if self.identified {
		// a connect without the disconnect of the previous connection
		self.discardIdentity()
	}
	self.connected = true
	self.connection = connection
	self.log("connected (%s), join", connection)
	emit(self.emitter, EventJoin, nil)
}

// transport disconnected. the identity is discarded, never reused.
func (self *Session) Disconnected() {
	if self.connected {
		self.log("disconnected (%s)", self.connection)
	}
	self.connected = false
	self.connection = Id{}
	self.discardIdentity()
}

func (self *Session) discardIdentity() {
	if self.identified {
		self.log("discard identity %s", self.clientId)
	}
	self.identified = false
	self.clientId = 0
}

// starts a new logical session and flushes deferred work in order
func (self *Session) Assign(clientId ClientId) {
	if self.identified && self.clientId != clientId {
		self.log("new identity %s replaces %s", clientId, self.clientId)
	}
	self.identified = true
	self.clientId = clientId
	self.log("identity %s (%s)", clientId, self.connection)

	deferred := self.deferred
	self.deferred = []func(ClientId){}
	if 0 < len(deferred) {
		glog.V(1).Infof("[s]flush %d deferred after identity %s\n", len(deferred), clientId)
	}
	for _, do := range deferred {
		do(clientId)
	}
}

// runs `do` now if an identity exists, otherwise when one is assigned
func (self *Session) WithIdentity(do func(ClientId)) {
	if self.identified {
		do(self.clientId)
	} else {
		self.deferred = append(self.deferred, do)
	}
}

// tells the producer this client is going away. nothing is sent without an identity.
func (self *Session) Leave() {
	if self.identified {
		emit(self.emitter, EventLeave, self.clientId)
	}
	self.deferred = []func(ClientId){}
}

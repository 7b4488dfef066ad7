package board

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// subscription tracker.
// records the ids the client asked to stop receiving so late in-flight
// updates are dropped until the id is subscribed again.
type Subscriptions struct {
	session *Session
	emitter Emitter

	unsubscribed map[ObjectId]bool

	log LogFunction
}

func NewSubscriptions(session *Session, emitter Emitter) *Subscriptions {
	return &Subscriptions{
		session:      session,
		emitter:      emitter,
		unsubscribed: map[ObjectId]bool{},
		log:          LogFn(LogLevelDebug, "subscription"),
	}
}

// re-subscribing always clears a suppression, before any further update arrives
func (self *Subscriptions) RequestSubscribe(id ObjectId) {
	if self.unsubscribed[id] {
		self.log("%s resubscribe clears suppression", id)
		delete(self.unsubscribed, id)
	}
	self.session.WithIdentity(func(clientId ClientId) {
		self.log("%s subscribe as %s", id, clientId)
		emit(self.emitter, EventSubscribe, &SubscribeRequest{
			ObjectId: id,
			ClientId: clientId,
		})
	})
}

// the suppression is recorded immediately, the message may be deferred.
// removing local state is the caller's part (see `ObjectRegistry.Remove`).
func (self *Subscriptions) RequestUnsubscribe(id ObjectId) {
	self.unsubscribed[id] = true
	self.session.WithIdentity(func(clientId ClientId) {
		self.log("%s unsubscribe as %s", id, clientId)
		emit(self.emitter, EventUnsubscribe, &SubscribeRequest{
			ObjectId: id,
			ClientId: clientId,
		})
	})
}

func (self *Subscriptions) IsSuppressed(id ObjectId) bool {
	return self.unsubscribed[id]
}

// sorted
func (self *Subscriptions) Suppressed() []ObjectId {
	ids := maps.Keys(self.unsubscribed)
	slices.Sort(ids)
	return ids
}

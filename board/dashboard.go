package board

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

type DashboardSettings struct {
	// board for updates that name none
	DefaultBoard BoardName
	// scroll window of text objects
	TextViewportLines int
	// pending events before `Post` blocks
	EventQueueSize int
}

func DefaultDashboardSettings() *DashboardSettings {
	return &DashboardSettings{
		DefaultBoard:      "Default",
		TextViewportLines: 12,
		EventQueueSize:    64,
	}
}

// the coordinating service. it owns the session, the subscription tracker and
// both registries, and is the only entry point for transport and user events.
//
// not safe for concurrent use: drive it from one goroutine, normally an `EventQueue`.
type Dashboard struct {
	settings *DashboardSettings

	emitter  Emitter
	renderer Renderer

	session       *Session
	subscriptions *Subscriptions
	boards        *BoardRegistry
	handlers      *TypeHandlers
	objects       *ObjectRegistry

	// the last `list` catalog received
	catalog []ObjectSummary
}

func NewDashboardWithDefaults(emitter Emitter, renderer Renderer) *Dashboard {
	return NewDashboard(emitter, renderer, DefaultDashboardSettings())
}

func NewDashboard(emitter Emitter, renderer Renderer, settings *DashboardSettings) *Dashboard {
	session := NewSession(emitter)
	subscriptions := NewSubscriptions(session, emitter)
	boards := NewBoardRegistry(renderer)
	handlers := NewTypeHandlers(settings)
	objects := NewObjectRegistry(subscriptions, boards, handlers, renderer)
	return &Dashboard{
		settings:      settings,
		emitter:       emitter,
		renderer:      renderer,
		session:       session,
		subscriptions: subscriptions,
		boards:        boards,
		handlers:      handlers,
		objects:       objects,
		catalog:       []ObjectSummary{},
	}
}

func (self *Dashboard) Settings() *DashboardSettings {
	return self.settings
}

func (self *Dashboard) Session() *Session {
	return self.session
}

func (self *Dashboard) Subscriptions() *Subscriptions {
	return self.subscriptions
}

func (self *Dashboard) Boards() *BoardRegistry {
	return self.boards
}

func (self *Dashboard) Objects() *ObjectRegistry {
	return self.objects
}

func (self *Dashboard) Catalog() []ObjectSummary {
	return slices.Clone(self.catalog)
}

func (self *Dashboard) Handle(event Event) error {
	return event.Apply(self)
}

// transport events

func (self *Dashboard) Connected(connection Id) {
	self.session.Connected(connection)
}

func (self *Dashboard) Disconnected() {
	self.session.Disconnected()
}

func (self *Dashboard) IdAssigned(clientId ClientId) {
	self.session.Assign(clientId)
}

// auto subscribe
func (self *Dashboard) NewObjectAvailable(id ObjectId) {
	self.subscriptions.RequestSubscribe(id)
}

func (self *Dashboard) Update(payload *ObjectPayload) error {
	update, err := ParseObjectUpdate(payload, self.settings.DefaultBoard)
	if err != nil {
		return err
	}
	self.objects.Upsert(update)
	return nil
}

func (self *Dashboard) MarkInactive(id ObjectId) error {
	return self.objects.MarkInactive(id)
}

// a producer close takes the same path as the close control.
// an object that is not tracked has no close control, nothing happens.
func (self *Dashboard) ForceClose(id ObjectId) {
	if !self.objects.Contains(id) {
		return
	}
	self.CloseObject(id)
}

func (self *Dashboard) ListReceived(entries []ObjectSummary) {
	self.catalog = slices.Clone(entries)
	self.renderer.SubscriptionListReceived(self.Catalog())
}

// user events

func (self *Dashboard) ActivateBoard(name BoardName) error {
	return self.boards.Activate(name)
}

func (self *Dashboard) MoveObject(id ObjectId, to BoardName) error {
	return self.objects.Move(id, to)
}

// the close control of an object
func (self *Dashboard) CloseObject(id ObjectId) {
	self.objects.Remove(id)
}

func (self *Dashboard) RequestSubscribe(id ObjectId) {
	self.subscriptions.RequestSubscribe(id)
}

func (self *Dashboard) RequestUnsubscribe(id ObjectId) {
	self.objects.Remove(id)
}

// unsubscribes every object of the board, then removes the board
func (self *Dashboard) CloseBoard(name BoardName) error {
	board, ok := self.boards.Get(name)
	if !ok {
		return fmt.Errorf("close %s: %w", name, ErrUnknownBoard)
	}
	for _, id := range slices.Clone(board.ObjectIds) {
		self.objects.Remove(id)
	}
	self.boards.remove(name)
	return nil
}

// asks the producer for the catalog. the answer arrives as a `list` event.
func (self *Dashboard) RequestList() {
	self.session.WithIdentity(func(clientId ClientId) {
		emit(self.emitter, EventListRequest, &ListRequest{
			ClientId: clientId,
		})
	})
}

// `selection` maps catalog ids to the wanted subscribed state.
// deselected tracked objects are removed, selected untracked ones subscribed.
func (self *Dashboard) ApplySubscriptionEdit(selection map[ObjectId]bool) {
	ids := []ObjectId{}
	for id := range selection {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		tracked := self.objects.Contains(id)
		if selection[id] {
			if !tracked {
				self.subscriptions.RequestSubscribe(id)
			}
		} else if tracked {
			self.CloseObject(id)
		}
	}
}

// fire and forget, no local change
func (self *Dashboard) CleanInactive() {
	emit(self.emitter, EventCleanInactive, nil)
}

func (self *Dashboard) ScrollText(id ObjectId, top int) error {
	view, ok := self.objects.Get(id)
	if !ok {
		return fmt.Errorf("scroll %s: %w", id, ErrUnknownObject)
	}
	self.handlers.Text.Scroll(view, top)
	self.renderer.ObjectRendered(view)
	return nil
}

func (self *Dashboard) ResizeObject(id ObjectId, containerHeight int) error {
	view, ok := self.objects.Get(id)
	if !ok {
		return fmt.Errorf("resize %s: %w", id, ErrUnknownObject)
	}
	self.handlers.Image.Resize(view, containerHeight)
	self.renderer.ObjectRendered(view)
	return nil
}

// an input submit or a button click on a dialog
func (self *Dashboard) SubmitDialogField(id ObjectId, name string, value string) error {
	view, ok := self.objects.Get(id)
	if !ok {
		return fmt.Errorf("submit %s: %w", id, ErrUnknownObject)
	}
	event, err := self.handlers.Dialog.Submit(view, name, value)
	if err != nil {
		return err
	}
	self.renderer.ObjectRendered(view)
	self.session.WithIdentity(func(clientId ClientId) {
		emit(self.emitter, EventDialog, &DialogEventRequest{
			ObjectId: id,
			ClientId: clientId,
			Event:    event,
			Args:     value,
		})
	})
	return nil
}

// shutdown
func (self *Dashboard) Leave() {
	self.session.Leave()
}

// verifies the board and object cross invariants
func (self *Dashboard) CheckConsistency() error {
	errs := []error{}
	placed := map[ObjectId]BoardName{}
	for _, name := range self.boards.Names() {
		board, ok := self.boards.Get(name)
		if !ok {
			errs = append(errs, fmt.Errorf("board %s in navigation but not registered", name))
			continue
		}
		if name == self.boards.Active() && board.UnreadCount != 0 {
			errs = append(errs, fmt.Errorf("active board %s has unread %d", name, board.UnreadCount))
		}
		if board.UnreadCount < 0 {
			errs = append(errs, fmt.Errorf("board %s has unread %d", name, board.UnreadCount))
		}
		for _, id := range board.ObjectIds {
			if other, ok := placed[id]; ok {
				errs = append(errs, fmt.Errorf("object %s on %s and %s", id, other, name))
			}
			placed[id] = name
			view, ok := self.objects.Get(id)
			if !ok {
				errs = append(errs, fmt.Errorf("object %s on %s is not tracked", id, name))
			} else if view.Object.Board != name {
				errs = append(errs, fmt.Errorf("object %s on %s references %s", id, name, view.Object.Board))
			}
		}
	}
	for _, id := range self.objects.Ids() {
		if _, ok := placed[id]; !ok {
			errs = append(errs, fmt.Errorf("object %s is on no board", id))
		}
	}
	if active := self.boards.Active(); active != "" {
		if _, ok := self.boards.Get(active); !ok {
			errs = append(errs, fmt.Errorf("active board %s is not registered", active))
		}
	}
	return errors.Join(errs...)
}

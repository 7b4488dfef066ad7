package board

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// object registry.
// the only owner of tracked objects and their view state. every update is
// gated by the subscription tracker, then created or updated, placed on its
// board, dispatched to the handler for its type, and counted as unread when
// its board is not active.
type ObjectRegistry struct {
	subscriptions *Subscriptions
	boards        *BoardRegistry
	handlers      *TypeHandlers
	renderer      Renderer

	views map[ObjectId]*ViewState

	log LogFunction
}

func NewObjectRegistry(
	subscriptions *Subscriptions,
	boards *BoardRegistry,
	handlers *TypeHandlers,
	renderer Renderer,
) *ObjectRegistry {
	return &ObjectRegistry{
		subscriptions: subscriptions,
		boards:        boards,
		handlers:      handlers,
		renderer:      renderer,
		views:         map[ObjectId]*ViewState{},
		log:           LogFn(LogLevelDebug, "object"),
	}
}

func (self *ObjectRegistry) Get(id ObjectId) (*ViewState, bool) {
	view, ok := self.views[id]
	return view, ok
}

func (self *ObjectRegistry) Contains(id ObjectId) bool {
	_, ok := self.views[id]
	return ok
}

func (self *ObjectRegistry) Len() int {
	return len(self.views)
}

// sorted
func (self *ObjectRegistry) Ids() []ObjectId {
	ids := maps.Keys(self.views)
	slices.Sort(ids)
	return ids
}

// applies one update. returns false when the id is suppressed.
func (self *ObjectRegistry) Upsert(update *ObjectUpdate) bool {
	if self.subscriptions.IsSuppressed(update.Id) {
		// expected during unsubscribe races
		glog.V(2).Infof("[o]%s suppressed, drop update\n", update.Id)
		return false
	}

	view, ok := self.views[update.Id]
	if !ok {
		view = self.create(update)
	} else if view.Object.Type != update.Type() {
		// the producer changed the type of the object
		self.log("%s type %s -> %s, reinit", update.Id, view.Object.Type, update.Type())
		view.Object.Type = update.Type()
		view.Content = nil
		view.NeedsInit = true
	}

	object := view.Object
	if update.Version != 0 && update.Version <= object.Version {
		// still applied, every message is a new update
		glog.V(2).Infof("[o]%s version %d after %d\n", object.Id, update.Version, object.Version)
	}
	object.Version = update.Version
	object.Last = update
	object.Name = update.Name

	if object.Active != update.Active {
		// live or stopped indicator, rendered below
		self.log("%s active %t -> %t", object.Id, object.Active, update.Active)
		object.Active = update.Active
	}

	handler := self.handlers.For(object.Type)
	if view.NeedsInit {
		handler.Init(view)
		view.NeedsInit = false
	}
	handler.Update(view, update)

	self.boards.MarkUnread(object.Board)

	view.Visible = true
	self.renderer.ObjectRendered(view)
	return true
}

func (self *ObjectRegistry) create(update *ObjectUpdate) *ViewState {
	self.log("%s create on %s", update.Id, update.Board)
	view := &ViewState{
		Object: &TrackedObject{
			Id:     update.Id,
			Name:   update.Name,
			Board:  update.Board,
			Type:   update.Type(),
			Active: false,
		},
		NeedsInit: true,
	}
	self.views[update.Id] = view

	index := self.boards.place(update.Board, update.Id)
	self.renderer.ObjectPlaced(view, index)
	if self.boards.Active() == "" {
		// surfaces the first source immediately
		if err := self.boards.Activate(update.Board); err != nil {
			panic(err)
		}
	}
	return view
}

// the producer reports the object idle. the object stays.
func (self *ObjectRegistry) MarkInactive(id ObjectId) error {
	view, ok := self.views[id]
	if !ok {
		return fmt.Errorf("inactive %s: %w", id, ErrUnknownObject)
	}
	view.Object.Active = false
	if view.Object.Type == ObjectTypeDialog {
		self.handlers.Dialog.SetActive(view, false)
	}
	self.renderer.ObjectRendered(view)
	return nil
}

// unsubscribes, then discards local state without waiting for the producer.
// the close control, a producer `close` and board close all end here.
func (self *ObjectRegistry) Remove(id ObjectId) {
	self.subscriptions.RequestUnsubscribe(id)
	self.discard(id)
}

func (self *ObjectRegistry) discard(id ObjectId) {
	if _, ok := self.views[id]; !ok {
		return
	}
	self.boards.detach(id)
	delete(self.views, id)
	self.log("%s removed", id)
	self.renderer.ObjectRemoved(id)
}

// move through the board registry, which owns placement
func (self *ObjectRegistry) Move(id ObjectId, to BoardName) error {
	view, ok := self.views[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrUnknownObject)
	}
	self.boards.MoveObject(view, to)
	return nil
}

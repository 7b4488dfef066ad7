package board

import (
	"encoding/json"
	"fmt"
)

// one unit of work for the dashboard. transport events and user
// interactions are both events and run to completion one at a time.
type Event interface {
	Apply(dashboard *Dashboard) error
}

// transport events

type ConnectedEvent struct {
	ConnectionId Id
}

func (self *ConnectedEvent) Apply(dashboard *Dashboard) error {
	dashboard.Connected(self.ConnectionId)
	return nil
}

type DisconnectedEvent struct {
	ConnectionId Id
}

func (self *DisconnectedEvent) Apply(dashboard *Dashboard) error {
	if !dashboard.Session().IsCurrent(self.ConnectionId) {
		return fmt.Errorf("disconnected %s: %w", self.ConnectionId, ErrStaleConnection)
	}
	dashboard.Disconnected()
	return nil
}

// an inbound event stamped with the connection it was read from.
// applied only while that connection is the current one.
type ConnectionEvent struct {
	ConnectionId Id
	Event        Event
}

func (self *ConnectionEvent) Apply(dashboard *Dashboard) error {
	if !dashboard.Session().IsCurrent(self.ConnectionId) {
		return fmt.Errorf("%T from %s: %w", self.Event, self.ConnectionId, ErrStaleConnection)
	}
	return self.Event.Apply(dashboard)
}

type IdAssignedEvent struct {
	ClientId ClientId
}

func (self *IdAssignedEvent) Apply(dashboard *Dashboard) error {
	dashboard.IdAssigned(self.ClientId)
	return nil
}

type NewObjectEvent struct {
	ObjectId ObjectId
}

func (self *NewObjectEvent) Apply(dashboard *Dashboard) error {
	dashboard.NewObjectAvailable(self.ObjectId)
	return nil
}

type UpdateEvent struct {
	Payload *ObjectPayload
}

func (self *UpdateEvent) Apply(dashboard *Dashboard) error {
	return dashboard.Update(self.Payload)
}

type InactiveEvent struct {
	ObjectId ObjectId
}

func (self *InactiveEvent) Apply(dashboard *Dashboard) error {
	return dashboard.MarkInactive(self.ObjectId)
}

type CloseEvent struct {
	ObjectId ObjectId
}

func (self *CloseEvent) Apply(dashboard *Dashboard) error {
	dashboard.ForceClose(self.ObjectId)
	return nil
}

// the producer dropped the object
type DiscardEvent struct {
	ObjectId ObjectId
	Close    bool
}

func (self *DiscardEvent) Apply(dashboard *Dashboard) error {
	if self.Close {
		dashboard.ForceClose(self.ObjectId)
		return nil
	}
	if !dashboard.Objects().Contains(self.ObjectId) {
		return nil
	}
	return dashboard.MarkInactive(self.ObjectId)
}

type ListEvent struct {
	Entries []ObjectSummary
}

func (self *ListEvent) Apply(dashboard *Dashboard) error {
	dashboard.ListReceived(self.Entries)
	return nil
}

// user events

type ActivateBoardEvent struct {
	Board BoardName
}

func (self *ActivateBoardEvent) Apply(dashboard *Dashboard) error {
	return dashboard.ActivateBoard(self.Board)
}

// reported by the drag and sort widget
type MoveObjectEvent struct {
	ObjectId ObjectId
	Board    BoardName
}

func (self *MoveObjectEvent) Apply(dashboard *Dashboard) error {
	return dashboard.MoveObject(self.ObjectId, self.Board)
}

type CloseObjectEvent struct {
	ObjectId ObjectId
}

func (self *CloseObjectEvent) Apply(dashboard *Dashboard) error {
	dashboard.CloseObject(self.ObjectId)
	return nil
}

type CloseBoardEvent struct {
	Board BoardName
}

func (self *CloseBoardEvent) Apply(dashboard *Dashboard) error {
	return dashboard.CloseBoard(self.Board)
}

type RequestListEvent struct {
}

func (self *RequestListEvent) Apply(dashboard *Dashboard) error {
	dashboard.RequestList()
	return nil
}

type ApplySubscriptionEditEvent struct {
	Selection map[ObjectId]bool
}

func (self *ApplySubscriptionEditEvent) Apply(dashboard *Dashboard) error {
	dashboard.ApplySubscriptionEdit(self.Selection)
	return nil
}

type CleanInactiveEvent struct {
}

func (self *CleanInactiveEvent) Apply(dashboard *Dashboard) error {
	dashboard.CleanInactive()
	return nil
}

type ScrollTextEvent struct {
	ObjectId ObjectId
	Top      int
}

func (self *ScrollTextEvent) Apply(dashboard *Dashboard) error {
	return dashboard.ScrollText(self.ObjectId, self.Top)
}

type ResizeObjectEvent struct {
	ObjectId ObjectId
	Height   int
}

func (self *ResizeObjectEvent) Apply(dashboard *Dashboard) error {
	return dashboard.ResizeObject(self.ObjectId, self.Height)
}

type SubmitDialogFieldEvent struct {
	ObjectId ObjectId
	Field    string
	Value    string
}

func (self *SubmitDialogFieldEvent) Apply(dashboard *Dashboard) error {
	return dashboard.SubmitDialogField(self.ObjectId, self.Field, self.Value)
}

type LeaveEvent struct {
}

func (self *LeaveEvent) Apply(dashboard *Dashboard) error {
	dashboard.Leave()
	return nil
}

// maps an inbound frame to its event
func DecodeEvent(frame *Frame) (Event, error) {
	switch frame.Event {
	case EventIdAssigned:
		var clientId ClientId
		if err := decodeData(frame, &clientId); err != nil {
			return nil, err
		}
		return &IdAssignedEvent{ClientId: clientId}, nil
	case EventNewObjectAvailable:
		var id ObjectId
		if err := decodeData(frame, &id); err != nil {
			return nil, err
		}
		return &NewObjectEvent{ObjectId: id}, nil
	case EventUpdate:
		payload := &ObjectPayload{}
		if err := decodeData(frame, payload); err != nil {
			return nil, err
		}
		return &UpdateEvent{Payload: payload}, nil
	case EventInactive:
		var id ObjectId
		if err := decodeData(frame, &id); err != nil {
			return nil, err
		}
		return &InactiveEvent{ObjectId: id}, nil
	case EventClose:
		var id ObjectId
		if err := decodeData(frame, &id); err != nil {
			return nil, err
		}
		return &CloseEvent{ObjectId: id}, nil
	case EventDiscard, EventDiscardAndClose:
		var id ObjectId
		if err := decodeData(frame, &id); err != nil {
			return nil, err
		}
		return &DiscardEvent{ObjectId: id, Close: frame.Event == EventDiscardAndClose}, nil
	case EventList:
		entries := []ObjectSummary{}
		if err := decodeData(frame, &entries); err != nil {
			return nil, err
		}
		return &ListEvent{Entries: entries}, nil
	default:
		return nil, fmt.Errorf("%q: %w", frame.Event, ErrUnknownEvent)
	}
}

func decodeData(frame *Frame, v any) error {
	if len(frame.Data) == 0 {
		return fmt.Errorf("%s without data", frame.Event)
	}
	if err := json.Unmarshal(frame.Data, v); err != nil {
		return fmt.Errorf("%s data: %w", frame.Event, err)
	}
	return nil
}

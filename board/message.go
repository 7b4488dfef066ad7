package board

import (
	"fmt"
)

// event names on the wire
type EventName string

// consumed
const (
	EventIdAssigned         EventName = "id assigned"
	EventNewObjectAvailable EventName = "new object available"
	EventUpdate             EventName = "update"
	EventInactive           EventName = "inactive"
	EventClose              EventName = "close"
	EventList               EventName = "list"
	EventDiscard            EventName = "discard"
	EventDiscardAndClose    EventName = "discard and close"
)

// produced
const (
	EventJoin          EventName = "join"
	EventSubscribe     EventName = "subscribe"
	EventUnsubscribe   EventName = "unsubscribe"
	EventListRequest   EventName = "list"
	EventCleanInactive EventName = "clean inactive"
	EventLeave         EventName = "leave"
	EventDialog        EventName = "dialog event"
)

// the `update` payload as the producer sends it
type ObjectPayload struct {
	Id      ObjectId             `json:"id"`
	Name    string               `json:"name"`
	Board   BoardName            `json:"board"`
	Type    ObjectType           `json:"type"`
	Active  bool                 `json:"active"`
	Version int64                `json:"version,omitempty"`
	Data    string               `json:"data,omitempty"`
	Fields  []DialogFieldPayload `json:"fields,omitempty"`
	// "True" selects append mode for text
	Rotate string `json:"rotate,omitempty"`
}

type DialogFieldPayload struct {
	Name    string          `json:"name"`
	Type    DialogFieldType `json:"type"`
	Text    string          `json:"text"`
	Value   any             `json:"value,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
	Group   string          `json:"group"`
	Handle  string          `json:"handle,omitempty"`
}

// one entry of the `list` catalog
type ObjectSummary struct {
	Id         ObjectId  `json:"id"`
	Name       string    `json:"name"`
	Board      BoardName `json:"board"`
	Subscribed bool      `json:"subscribed"`
}

type SubscribeRequest struct {
	ObjectId ObjectId `json:"obj_id"`
	ClientId ClientId `json:"client_id"`
}

type ListRequest struct {
	ClientId ClientId `json:"client_id"`
}

type DialogEventRequest struct {
	ObjectId ObjectId `json:"obj_id"`
	ClientId ClientId `json:"client_id"`
	// <field name>@<handle>
	Event string `json:"event"`
	Args  string `json:"args"`
}

// an `update` after decoding. `Content` is one of the object type variants.
type ObjectUpdate struct {
	Id      ObjectId
	Name    string
	Board   BoardName
	Active  bool
	Version int64
	Content ObjectContent
}

func (self *ObjectUpdate) Type() ObjectType {
	return self.Content.ObjectType()
}

// maps the wire payload to the typed variant for its type.
// an empty board is placed on `defaultBoard`.
func ParseObjectUpdate(payload *ObjectPayload, defaultBoard BoardName) (*ObjectUpdate, error) {
	if payload.Id == "" {
		return nil, fmt.Errorf("update without object id")
	}
	var content ObjectContent
	switch payload.Type {
	case ObjectTypeText:
		content = &TextContent{
			Data:   payload.Data,
			Append: payload.Rotate == "True",
		}
	case ObjectTypeImage:
		content = &ImageContent{
			Data: payload.Data,
		}
	case ObjectTypeDialog:
		fields := make([]DialogField, 0, len(payload.Fields))
		for _, fieldPayload := range payload.Fields {
			field, err := parseDialogField(&fieldPayload)
			if err != nil {
				return nil, fmt.Errorf("object %s: %w", payload.Id, err)
			}
			fields = append(fields, field)
		}
		content = &DialogContent{
			Fields: fields,
		}
	default:
		return nil, fmt.Errorf("object %s type %q: %w", payload.Id, payload.Type, ErrUnknownObjectType)
	}

	board := payload.Board
	if board == "" {
		board = defaultBoard
	}
	return &ObjectUpdate{
		Id:      payload.Id,
		Name:    payload.Name,
		Board:   board,
		Active:  payload.Active,
		Version: payload.Version,
		Content: content,
	}, nil
}

func parseDialogField(payload *DialogFieldPayload) (DialogField, error) {
	switch payload.Type {
	case DialogFieldLabel, DialogFieldInput, DialogFieldButton:
	default:
		return DialogField{}, fmt.Errorf("field %s type %q: %w", payload.Name, payload.Type, ErrUnknownFieldType)
	}
	// a missing enabled is the producer default
	enabled := true
	if payload.Enabled != nil {
		enabled = *payload.Enabled
	}
	value := ""
	switch v := payload.Value.(type) {
	case nil:
	case string:
		value = v
	default:
		value = fmt.Sprint(v)
	}
	return DialogField{
		Name:    payload.Name,
		Type:    payload.Type,
		Text:    payload.Text,
		Value:   value,
		Enabled: enabled,
		Group:   payload.Group,
		Handle:  payload.Handle,
	}, nil
}

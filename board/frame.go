package board

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// one event on the wire: {event, data}.
// `Data` is kept as json regardless of the codec so events decode one way.
type Frame struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewFrame(event EventName, data any) (*Frame, error) {
	frame := &Frame{
		Event: event,
	}
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("%s data: %w", event, err)
		}
		frame.Data = b
	}
	return frame, nil
}

func RequireFrame(event EventName, data any) *Frame {
	frame, err := NewFrame(event, data)
	if err != nil {
		panic(err)
	}
	return frame
}

// generic form of the data, for codecs that do not carry json
func (self *Frame) dataValue() (any, error) {
	if len(self.Data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(self.Data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (self *Frame) setDataValue(v any) error {
	if v == nil {
		self.Data = nil
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	self.Data = b
	return nil
}

type Codec interface {
	Name() string
	// websocket message type of encoded frames
	MessageType() int
	Encode(frame *Frame) ([]byte, error)
	Decode(b []byte) (*Frame, error)
}

const (
	CodecJson    = "json"
	CodecMsgpack = "msgpack"
	CodecProto   = "proto"
)

func CodecByName(name string) (Codec, error) {
	switch name {
	case CodecJson, "":
		return &JsonCodec{}, nil
	case CodecMsgpack:
		return &MsgpackCodec{}, nil
	case CodecProto:
		return &ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownCodec)
	}
}

// text frames
type JsonCodec struct {
}

func (self *JsonCodec) Name() string {
	return CodecJson
}

func (self *JsonCodec) MessageType() int {
	return websocket.TextMessage
}

func (self *JsonCodec) Encode(frame *Frame) ([]byte, error) {
	return json.Marshal(frame)
}

func (self *JsonCodec) Decode(b []byte) (*Frame, error) {
	frame := &Frame{}
	if err := json.Unmarshal(b, frame); err != nil {
		return nil, err
	}
	if frame.Event == "" {
		return nil, fmt.Errorf("frame without event")
	}
	return frame, nil
}

type msgpackFrame struct {
	Event string `msgpack:"event"`
	Data  any    `msgpack:"data"`
}

// binary frames
type MsgpackCodec struct {
}

func (self *MsgpackCodec) Name() string {
	return CodecMsgpack
}

func (self *MsgpackCodec) MessageType() int {
	return websocket.BinaryMessage
}

func (self *MsgpackCodec) Encode(frame *Frame) ([]byte, error) {
	data, err := frame.dataValue()
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&msgpackFrame{
		Event: string(frame.Event),
		Data:  data,
	})
}

func (self *MsgpackCodec) Decode(b []byte) (*Frame, error) {
	// maps decode as map[string]any, so they re-encode as json
	var m msgpackFrame
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m.Event == "" {
		return nil, fmt.Errorf("frame without event")
	}
	frame := &Frame{
		Event: EventName(m.Event),
	}
	if err := frame.setDataValue(m.Data); err != nil {
		return nil, err
	}
	return frame, nil
}

// binary frames as a `google.protobuf.Struct` {event, data}
type ProtoCodec struct {
}

func (self *ProtoCodec) Name() string {
	return CodecProto
}

func (self *ProtoCodec) MessageType() int {
	return websocket.BinaryMessage
}

func (self *ProtoCodec) Encode(frame *Frame) ([]byte, error) {
	data, err := frame.dataValue()
	if err != nil {
		return nil, err
	}
	fields := map[string]any{
		"event": string(frame.Event),
	}
	if data != nil {
		fields["data"] = data
	}
	message, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(message)
}

func (self *ProtoCodec) Decode(b []byte) (*Frame, error) {
	message := &structpb.Struct{}
	if err := proto.Unmarshal(b, message); err != nil {
		return nil, err
	}
	fields := message.AsMap()
	event, _ := fields["event"].(string)
	if event == "" {
		return nil, fmt.Errorf("frame without event")
	}
	frame := &Frame{
		Event: EventName(event),
	}
	if err := frame.setDataValue(fields["data"]); err != nil {
		return nil, err
	}
	return frame, nil
}

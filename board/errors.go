package board

import "errors"

// errors returned by the board package
//
// error type checking:
//   an error can be checked if it is any of these using errors.Is(err, ErrType)

// used for session and subscriptions
var (
	ErrNoIdentity = errors.New("no client id assigned")
)

// used for registries
var (
	ErrUnknownObject = errors.New("unknown object")
	ErrUnknownBoard  = errors.New("unknown board")
)

// used for decoding
var (
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownObjectType = errors.New("unknown object type")
	ErrUnknownFieldType  = errors.New("unknown dialog field type")
	ErrUnknownCodec      = errors.New("unknown codec")
)

// used for dialogs
var (
	ErrControlDisabled = errors.New("dialog control is disabled")
	ErrNoHandle        = errors.New("dialog field has no handle")
)

// used for the transport and event queue
var (
	ErrNotConnected    = errors.New("transport not connected")
	ErrStaleConnection = errors.New("event from a stale connection")
	ErrClosed          = errors.New("closed")
)

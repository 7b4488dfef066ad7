package board

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/oklog/ulid/v2"
)

// local id of a transport connection. never sent to the producer.
// comparable
type Id [16]byte

func NewId() Id {
	return Id(ulid.Make())
}

func (self Id) String() string {
	return ulid.ULID(self).String()
}

// id of an object published by the producer. unique among registered objects.
type ObjectId string

// name of a board (column). boards are created on first reference.
type BoardName string

// identity assigned by the producer after `join`.
// the producer assigns small integers, but a string form is tolerated.
// comparable
type ClientId int64

func (self ClientId) String() string {
	return strconv.FormatInt(int64(self), 10)
}

func (self *ClientId) UnmarshalJSON(src []byte) error {
	var n json.Number
	if err := json.Unmarshal(src, &n); err != nil {
		var s string
		if err := json.Unmarshal(src, &s); err != nil {
			return fmt.Errorf("invalid client id %s: %w", string(src), err)
		}
		n = json.Number(s)
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		// proto and msgpack round trips may carry integral floats
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return fmt.Errorf("invalid client id %s: %w", string(src), err)
		}
		v = int64(f)
	}
	*self = ClientId(v)
	return nil
}

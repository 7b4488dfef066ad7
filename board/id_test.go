package board

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestIdUnique(t *testing.T) {
	seen := map[Id]bool{}
	for n := 0; n < 1024; n++ {
		id := NewId()
		assert.Equal(t, seen[id], false)
		assert.NotEqual(t, id, Id{})
		assert.Equal(t, len(id.String()), 26)
		seen[id] = true
	}
}

func TestClientIdJson(t *testing.T) {
	var clientId ClientId

	err := json.Unmarshal([]byte(`42`), &clientId)
	assert.Equal(t, err, nil)
	assert.Equal(t, clientId, ClientId(42))

	err = json.Unmarshal([]byte(`"17"`), &clientId)
	assert.Equal(t, err, nil)
	assert.Equal(t, clientId, ClientId(17))

	err = json.Unmarshal([]byte(`3.0`), &clientId)
	assert.Equal(t, err, nil)
	assert.Equal(t, clientId, ClientId(3))

	err = json.Unmarshal([]byte(`3.5`), &clientId)
	assert.NotEqual(t, err, nil)

	err = json.Unmarshal([]byte(`"abc"`), &clientId)
	assert.NotEqual(t, err, nil)

	b, err := json.Marshal(&SubscribeRequest{ObjectId: "cam", ClientId: 7})
	assert.Equal(t, err, nil)
	assert.Equal(t, string(b), `{"obj_id":"cam","client_id":7}`)

	assert.Equal(t, ClientId(7).String(), "7")
}

package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

const tempIDPrefix = "tmp-"

// ID identifies an entity within its collection. Servers may send ids as
// JSON numbers; they are kept in their decimal string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return &ValidationError{Field: "id", Reason: "must be a string or number"}
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// NewTempID returns a client-side id for an entity the server has not
// acknowledged yet.
func NewTempID() ID {
	return ID(tempIDPrefix + uuid.NewString())
}

func (id ID) Temporary() bool {
	return strings.HasPrefix(string(id), tempIDPrefix)
}

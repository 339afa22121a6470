// ABOUTME: Record identifiers shared by every stored collection.
// ABOUTME: Accepts legacy numeric ids on decode so all ids compare as strings.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a record within its collection.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// Short returns the 8-character prefix used in CLI listings.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// UnmarshalJSON accepts both JSON strings and JSON numbers.
// Older data sets stored millisecond timestamps as numeric ids.
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
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

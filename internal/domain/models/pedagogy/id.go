package pedagogy

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a record identifier normalized to its string form.
// The upstream API sends integers, but nothing in the client relies on that:
// both 42 and "42" decode to ID("42"), so comparisons never trip over types.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the normalized identifier.
func (id ID) String() string {
	return string(id)
}

package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a display string the backend may encode as a string, a number or a
// list of strings (salary, requirements, benefits).
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal text: %w", err)
		}

		*t = Text(s)
	case data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("unmarshal text list: %w", err)
		}

		*t = Text(strings.Join(items, ", "))
	default:
		*t = Text(data)
	}

	return nil
}

func (t Text) String() string {
	return string(t)
}

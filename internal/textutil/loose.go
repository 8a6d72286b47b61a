package textutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// LooseString is a text field that also accepts a JSON number or null.
// Numbers keep their shortest decimal form, so 30 becomes "30" and 1.10
// becomes "1.1". It always encodes as a JSON string.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = LooseString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	v, err := n.Float64()
	if err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = LooseString(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

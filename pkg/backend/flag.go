package backend

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Flag is a boolean the backend sends either as 0/1 or as true/false.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "true", "1", `"1"`:
		*f = true
		return nil
	case "false", "0", `"0"`, "null", `""`:
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid flag %s", b)
	}
	*f = n != 0
	return nil
}

func flagInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

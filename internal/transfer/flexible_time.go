package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// FlexibleTime accepts RFC 3339 timestamps as well as the naive ISO forms
// some backend routes emit. Naive values are read as UTC.
type FlexibleTime time.Time

func (t *FlexibleTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = FlexibleTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = FlexibleTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = FlexibleTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("invalid time %q", s)
}

func (t FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t))
}

func (t FlexibleTime) Time() time.Time {
	return time.Time(t)
}

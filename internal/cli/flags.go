package cli

import (
	"fmt"
	"strings"
	"time"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// pairs splits account=value entries.
func (l listFlag) pairs() (map[string][]string, error) {
	out := map[string][]string{}
	for _, v := range l {
		k, val, ok := strings.Cut(v, "=")
		if !ok || k == "" || val == "" {
			return nil, fmt.Errorf("expected account=value, got %q", v)
		}
		out[k] = append(out[k], val)
	}
	return out, nil
}

var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// parseWhen accepts RFC 3339, a local wall time or a +duration from now.
func parseWhen(v string, now time.Time) (time.Time, error) {
	if strings.HasPrefix(v, "+") {
		d, err := time.ParseDuration(v[1:])
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(d), nil
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", v)
}

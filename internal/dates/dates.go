package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Flexible decodes the date formats browsers and form libraries actually send.
// Values without a zone are read as UTC.
type Flexible struct {
	time.Time
}

func Parse(raw string) (time.Time, error) {
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format %q", raw)
}

func (f *Flexible) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		f.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	t, err := Parse(raw)
	if err != nil {
		return err
	}

	f.Time = t
	return nil
}

func (f Flexible) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.UTC().Format(time.RFC3339))
}

// Ptr returns nil for a nil or zero value.
func (f *Flexible) Ptr() *time.Time {
	if f == nil || f.IsZero() {
		return nil
	}
	t := f.Time
	return &t
}

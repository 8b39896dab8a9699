package fetcher

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// flexInt tolerates providers that send counters as numbers, quoted numbers
// or null. Anything unparseable decodes to 0 instead of failing the whole
// response.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(n))
	return nil
}

var postDateLayouts = []string{
	time.RFC3339,
	time.RubyDate,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate converts whatever date format a provider uses into RFC3339
// so the metrics engine can window on it. Unrecognized formats pass through
// untouched.
func normalizeDate(raw string) string {
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

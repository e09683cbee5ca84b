package probe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
)

// Sentinel entry substituted for the headers when the probe fails.
const (
	SentinelName  = "Header"
	SentinelValue = "Error fetching headers."
)

// Header is a single response header.
type Header struct {
	Name  string
	Value string
}

// HeaderSet is an ordered collection of response headers.
type HeaderSet struct {
	entries []Header
}

// NewHeaderSet converts h into a HeaderSet. net/http hands headers over as a
// map, so entries are ordered by canonical name; repeated values are joined
// with ", ".
func NewHeaderSet(h http.Header) HeaderSet {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Header, 0, len(names))
	for _, name := range names {
		entries = append(entries, Header{Name: name, Value: strings.Join(h[name], ", ")})
	}
	return HeaderSet{entries: entries}
}

// Sentinel returns the single-entry set that stands in for a failed probe.
func Sentinel() HeaderSet {
	return HeaderSet{entries: []Header{{Name: SentinelName, Value: SentinelValue}}}
}

// IsSentinel reports whether h carries no signal because the probe failed.
func (h HeaderSet) IsSentinel() bool {
	return len(h.entries) == 1 && h.entries[0] == Header{Name: SentinelName, Value: SentinelValue}
}

// Len returns the number of headers.
func (h HeaderSet) Len() int { return len(h.entries) }

// Entries returns a copy of the headers in order.
func (h HeaderSet) Entries() []Header {
	out := make([]Header, len(h.entries))
	copy(out, h.entries)
	return out
}

// Get returns the value of the first header matching name case-insensitively.
func (h HeaderSet) Get(name string) (string, bool) {
	for _, e := range h.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the set as a JSON object, keeping entry order.
func (h HeaderSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := []byte{'{'}
	for i, e := range h.entries {
		if i > 0 {
			out = append(out, ", "...)
		}
		for j, s := range []string{e.Name, e.Value} {
			buf.Reset()
			if err := enc.Encode(s); err != nil {
				return nil, err
			}
			out = append(out, bytes.TrimRight(buf.Bytes(), "\n")...)
			if j == 0 {
				out = append(out, ": "...)
			}
		}
	}
	return append(out, '}'), nil
}

package target

import (
	"net/url"
	"strings"
)

// Spec is the user-supplied target URL containing the fuzz placeholder.
type Spec struct {
	Raw         string
	Placeholder string
}

// New returns a Spec for raw with the given placeholder keyword.
func New(raw, placeholder string) Spec {
	return Spec{Raw: raw, Placeholder: placeholder}
}

// ProbeURL returns the URL with every placeholder occurrence removed, which
// is the address that gets probed for headers.
func (s Spec) ProbeURL() string {
	return strings.ReplaceAll(s.Raw, s.Placeholder, "")
}

// PlaceholderAtEnd reports whether the placeholder sits in the final path
// segment, the only position where appending extensions makes sense.
// Unparsable URLs report false.
func (s Spec) PlaceholderAtEnd() bool {
	u, err := url.Parse(s.Raw)
	if err != nil {
		return false
	}
	segments := strings.Split(u.Path, "/")
	return strings.Contains(segments[len(segments)-1], s.Placeholder)
}

package suggest

import (
	"encoding/json"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Reply is the outcome of parsing a model reply. Parsed is false when the
// text was not a JSON object with an "extensions" array of strings, in which
// case Extensions is empty.
type Reply struct {
	Extensions []string
	Parsed     bool
}

// ParseReply decodes raw strictly as JSON. Surrounding whitespace is
// tolerated, anything else around the object is not.
func ParseReply(raw string) Reply {
	var body struct {
		Extensions *[]string `json:"extensions"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return Reply{}
	}
	if body.Extensions == nil {
		return Reply{}
	}
	return Reply{Extensions: *body.Extensions, Parsed: true}
}

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9][A-Za-z0-9._-]{0,15}$`)

// Sanitize normalizes model-supplied extensions before they reach the ffuf
// command line: whitespace is trimmed, a missing leading dot is added, and
// entries that still don't look like an extension (separators, commas,
// spaces, over-long) are dropped. Order is preserved.
func Sanitize(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(ext)
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !extensionPattern.MatchString(e) {
			log.WithFields(log.Fields{"extension": ext}).Debug("Dropping invalid extension")
			continue
		}
		out = append(out, e)
	}
	return out
}

// Truncate returns the first n entries of exts.
func Truncate(exts []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if len(exts) > n {
		return exts[:n]
	}
	return exts
}

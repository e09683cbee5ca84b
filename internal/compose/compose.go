package compose

import (
	"errors"
	"strconv"
	"strings"
)

// ExtensionFlag is the ffuf flag that takes the comma-separated extension list.
const ExtensionFlag = "-e"

// ErrNoExtensions is returned when there is nothing to pass to ExtensionFlag.
var ErrNoExtensions = errors.New("no extensions were suggested")

// Invocation is the fuzzer command line. It is built once and never changes;
// accessors hand out copies.
type Invocation struct {
	tokens []string
}

// BuildInvocation returns [fuzzerPath] + passthrough + [-e, joined
// extensions]. The passthrough arguments are copied unchanged and in order.
func BuildInvocation(fuzzerPath string, passthrough, extensions []string) (Invocation, error) {
	joined := strings.Join(extensions, ",")
	if joined == "" {
		return Invocation{}, ErrNoExtensions
	}

	tokens := make([]string, 0, len(passthrough)+3)
	tokens = append(tokens, fuzzerPath)
	tokens = append(tokens, passthrough...)
	tokens = append(tokens, ExtensionFlag, joined)
	return Invocation{tokens: tokens}, nil
}

// Path returns the fuzzer executable.
func (inv Invocation) Path() string {
	if len(inv.tokens) == 0 {
		return ""
	}
	return inv.tokens[0]
}

// Args returns the arguments after the executable.
func (inv Invocation) Args() []string {
	if len(inv.tokens) == 0 {
		return nil
	}
	return append([]string(nil), inv.tokens[1:]...)
}

// Tokens returns the full command line including the executable.
func (inv Invocation) Tokens() []string {
	return append([]string(nil), inv.tokens...)
}

// String renders the command line for display, quoting tokens that would
// not survive a shell as-is.
func (inv Invocation) String() string {
	parts := make([]string, len(inv.tokens))
	for i, tok := range inv.tokens {
		if tok == "" || strings.ContainsAny(tok, " \t\n'\"\\$`;&|<>*?") {
			tok = strconv.Quote(tok)
		}
		parts[i] = tok
	}
	return strings.Join(parts, " ")
}

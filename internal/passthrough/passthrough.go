// Package passthrough separates extfuzz's own flags from the argument
// vector handed to ffuf. The ffuf arguments are treated as an opaque,
// ordered bag; the only thing ever looked up in it is the target URL.
package passthrough

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// URLFlag is the ffuf flag carrying the target URL.
const URLFlag = "-u"

// ErrMissingArgument is returned when a required flag or its value is absent.
var ErrMissingArgument = errors.New("missing argument")

// TargetURL returns the value that follows the first occurrence of flag in
// args. A missing flag, a flag in last position or an empty value yields
// ErrMissingArgument.
func TargetURL(args []string, flag string) (string, error) {
	for i, arg := range args {
		if arg != flag {
			continue
		}
		if i+1 < len(args) && args[i+1] != "" {
			return args[i+1], nil
		}
		break
	}
	return "", fmt.Errorf("%w: %s URL argument is required", ErrMissingArgument, flag)
}

// Split pulls every long flag known to fs out of raw and returns those tokens
// (own) and the remaining tokens in their original order (rest). Both the
// "--name value" and "--name=value" forms are recognised; boolean flags never
// consume the following token. A bare "--" ends the scan and everything after
// it is passed through untouched.
//
// Only the double-dash form is matched so ffuf's single-dash flags, which may
// share a name, are never captured.
func Split(fs *pflag.FlagSet, raw []string) (own, rest []string) {
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if arg == "--" {
			rest = append(rest, raw[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			rest = append(rest, arg)
			continue
		}

		name, _, hasValue := strings.Cut(arg[2:], "=")
		f := fs.Lookup(name)
		if f == nil {
			rest = append(rest, arg)
			continue
		}

		own = append(own, arg)
		if hasValue || f.NoOptDefVal != "" {
			continue
		}
		if i+1 < len(raw) {
			own = append(own, raw[i+1])
			i++
		}
	}
	return own, rest
}

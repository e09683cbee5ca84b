package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maxvaer/extfuzz/pkg/version"
)

// Status lines go to stderr.
var statusOut io.Writer = os.Stderr

// Info prints a "[*]" progress line.
func Info(format string, args ...any) {
	fmt.Fprintln(statusOut, infoStyle.Sprint("[*] ")+fmt.Sprintf(format, args...))
}

// Success prints a "[+]" line.
func Success(format string, args ...any) {
	fmt.Fprintln(statusOut, successStyle.Sprint("[+] ")+fmt.Sprintf(format, args...))
}

// Warn prints a "[!]" line.
func Warn(format string, args ...any) {
	fmt.Fprintln(statusOut, warnStyle.Sprint("[!] ")+fmt.Sprintf(format, args...))
}

// Banner returns the ASCII banner with the version appended.
func Banner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
           __  ____
  ___ __ _/ /_/ __/_ ________
 / -_) \ / __/ _// // /_ /_ /
 \__/_\_\\__/_/  \_,_//__/__/   %s

`, ver)
}

// PrintBanner writes the colored banner and tagline to w.
func PrintBanner(w io.Writer) {
	bannerStyle.Fprint(w, Banner(version.Version))
	mutedStyle.Fprintln(w, "    LLM-suggested extensions for ffuf")
	fmt.Fprintln(w)
}

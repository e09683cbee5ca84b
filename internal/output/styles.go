package output

import "github.com/fatih/color"

// Styles honour color.NoColor, which the command sets from --no-color and
// the terminal check.
var (
	bannerStyle  = color.New(color.FgHiMagenta, color.Bold)
	infoStyle    = color.New(color.FgHiBlue)
	successStyle = color.New(color.FgHiGreen, color.Bold)
	warnStyle    = color.New(color.FgHiYellow)
	mutedStyle   = color.New(color.FgHiBlack)
	valueStyle   = color.New(color.FgHiWhite)
	extStyle     = color.New(color.FgHiCyan, color.Bold)
	commandStyle = color.New(color.FgHiCyan)
)

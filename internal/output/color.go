package output

import "os"

// Color modes accepted by the --color flag.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColorMode determines whether styled output should be used, given
// the --color flag value and whether the output is a terminal. Unknown
// values behave like "auto".
func ResolveColorMode(colorMode string, isTTY bool) bool {
	switch colorMode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY
	}
}

// IsTTY reports whether stream is an *os.File attached to a terminal.
// It accepts readers as well as writers so stdin can be checked before
// starting an interactive menu.
func IsTTY(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

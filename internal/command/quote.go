package command

import "strings"

// Characters cmd.exe interprets outside double quotes, plus the blanks that
// separate arguments.
const cmdSpecial = " \t\"&|<>^()"

// Joins args into a command line that the C runtime of the target program
// splits back into the same arguments.
func windowsCommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = windowsQuote(a)
	}
	return strings.Join(quoted, " ")
}

// Quotes one argument following the Microsoft C runtime rules: backslashes
// are literal unless they precede a double quote, in which case they are
// doubled and the quote is escaped.
func windowsQuote(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, cmdSpecial) {
		return arg
	}

	var b strings.Builder
	b.WriteByte('"')
	slashes := 0
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		switch c {
		case '\\':
			slashes++
		case '"':
			b.WriteString(strings.Repeat(`\`, slashes+1))
			slashes = 0
		default:
			slashes = 0
		}
		b.WriteByte(c)
	}
	b.WriteString(strings.Repeat(`\`, slashes))
	b.WriteByte('"')
	return b.String()
}

package chat

import "strings"

// ParseCommand splits a message into a command name and its arguments.
// "/Buy@socks_bot 3" yields ("buy", ["3"]). Text that does not start with
// a slash yields an empty command and no arguments.
func ParseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}

	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}

	return strings.ToLower(name), fields[1:]
}

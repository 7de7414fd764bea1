package chat

import "strings"

const (
	// Delimiter separates entries in a persisted message log.
	Delimiter = "\n---\n"
	// MaxEntries is how many utterances a log retains after a write.
	MaxEntries = 5

	delimiterLine = "---"
	escapedLine   = "- - -"
)

// Log is one bot's utterance history, oldest first.
type Log []string

// Latest returns the most recent utterance or "" for an empty log.
func (l Log) Latest() string {
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}

// Append returns a new log with message added and the oldest entries dropped
// beyond MaxEntries. The receiver is left untouched.
func (l Log) Append(message string) Log {
	next := make(Log, 0, len(l)+1)
	next = append(next, l...)
	next = append(next, Sanitize(message))
	return Tail(next, MaxEntries)
}

// Tail keeps the last n entries, preserving order.
func Tail(messages []string, n int) []string {
	if n < 0 {
		n = 0
	}
	start := len(messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(messages)-start)
	copy(out, messages[start:])
	return out
}

// ParseLog splits a persisted blob into entries, dropping blank segments.
func ParseLog(blob string) Log {
	if blob == "" {
		return Log{}
	}
	parts := strings.Split(blob, Delimiter)
	out := make(Log, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Sanitize rewrites every line of entry that reads exactly "---" to "- - -",
// so that once joined no entry can introduce a Delimiter of its own.
func Sanitize(entry string) string {
	if !strings.Contains(entry, delimiterLine) {
		return entry
	}
	lines := strings.Split(entry, "\n")
	for i, line := range lines {
		if line == delimiterLine {
			lines[i] = escapedLine
		}
	}
	return strings.Join(lines, "\n")
}

// FormatLog joins the last MaxEntries messages into the persisted blob form.
func FormatLog(messages []string) string {
	tail := Tail(messages, MaxEntries)
	for i, message := range tail {
		tail[i] = Sanitize(message)
	}
	return strings.Join(tail, Delimiter)
}

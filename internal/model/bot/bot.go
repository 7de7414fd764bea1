package bot

import (
	"fmt"
	"strings"
)

// ID identifies one of the two personas taking part in the conversation.
type ID string

const (
	A ID = "A"
	B ID = "B"
)

// All returns both bots in speaking order.
func All() []ID {
	return []ID{A, B}
}

// Parse accepts "A", "b", "bot-a" and similar spellings.
func Parse(raw string) (ID, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.TrimPrefix(normalized, "BOT-")
	normalized = strings.TrimPrefix(normalized, "BOT_")
	normalized = strings.TrimPrefix(normalized, "BOT ")

	switch ID(normalized) {
	case A:
		return A, nil
	case B:
		return B, nil
	default:
		return "", fmt.Errorf("unknown bot %q", raw)
	}
}

// Valid reports whether id is A or B.
func (id ID) Valid() bool {
	return id == A || id == B
}

// Other returns the conversation partner.
func (id ID) Other() ID {
	if id == A {
		return B
	}
	return A
}

// Label is the speaker prefix used in transcripts and images, e.g. "Bot A".
func (id ID) Label() string {
	return "Bot " + string(id)
}

func (id ID) slug() string {
	return strings.ToLower(string(id))
}

// MessageFile is the flat-file name of the bot's message log.
func (id ID) MessageFile() string {
	return fmt.Sprintf("bot_%s_message.txt", id.slug())
}

// PromptFile is the flat-file name of the bot's system prompt.
func (id ID) PromptFile() string {
	return fmt.Sprintf("systemprompt_%s.txt", id.slug())
}

// PortraitFile is the PNG written with the bot's latest utterance.
func (id ID) PortraitFile() string {
	return fmt.Sprintf("bot_%s_latestmessage.png", id.slug())
}

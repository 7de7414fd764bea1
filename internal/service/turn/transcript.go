package turn

import (
	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

// BuildTranscript interleaves the two logs by index, A before B, labelling
// every entry with its speaker. Once either log has been truncated the
// order is only an approximation of what was actually said.
func BuildTranscript(aLog, bLog chat.Log) []chat.Entry {
	rounds := max(len(aLog), len(bLog))
	transcript := make([]chat.Entry, 0, len(aLog)+len(bLog))
	for i := 0; i < rounds; i++ {
		if i < len(aLog) {
			transcript = append(transcript, entry(bot.A, aLog[i]))
		}
		if i < len(bLog) {
			transcript = append(transcript, entry(bot.B, bLog[i]))
		}
	}
	return transcript
}

func entry(id bot.ID, text string) chat.Entry {
	return chat.Entry{Role: chat.RoleAssistant, Content: id.Label() + ": " + text}
}

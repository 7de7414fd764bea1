package chat

import "github.com/zhouzirui/bot-duet/internal/model/bot"

// Turn is the utterance produced by one orchestration run.
type Turn struct {
	Speaker   bot.ID `json:"bot"`
	Utterance string `json:"message"`
}

// RoleAssistant is the only role prior turns are replayed with.
const RoleAssistant = "assistant"

// Entry is one line of conversational context handed to the model.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

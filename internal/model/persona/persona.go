package persona

import "github.com/zhouzirui/bot-duet/internal/model/bot"

// Persona pairs a bot with the system prompt that defines its character.
type Persona struct {
	Bot          bot.ID `json:"bot"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
}

// Seed returns fixed personas for tests and in-memory stores. Production
// prompts always come from the prompt files; a missing file yields "".
func Seed() []Persona {
	return []Persona{
		{
			Bot:          bot.A,
			Name:         bot.A.Label(),
			SystemPrompt: "あなたは好奇心旺盛で明るいおしゃべり好きです。短く親しみやすい口調で話してください。",
		},
		{
			Bot:          bot.B,
			Name:         bot.B.Label(),
			SystemPrompt: "あなたは落ち着いた皮肉屋です。相手の話に一言添えて、短く返してください。",
		},
	}
}

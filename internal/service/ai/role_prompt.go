package ai

import (
	"fmt"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
)

// roleInstructionFormat 接收发言者与对方的标签。
const roleInstructionFormat = "あなたは%sです。%sとの会話を続けてください。"

// RoleInstruction is the closing user message that reminds the model which
// bot it plays and who it is answering.
func RoleInstruction(speaker bot.ID) string {
	return fmt.Sprintf(roleInstructionFormat, speaker.Label(), speaker.Other().Label())
}

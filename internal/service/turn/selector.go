package turn

import (
	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/model/chat"
)

// NextSpeaker 根据两边已保存的消息数量决定下一位发言者。
//
// 双方都为空时 A 先开口；只有一方为空时由空的一方发言；否则消息较少的一方
// 发言；数量相同时默认 A 刚说完，轮到 B。
func NextSpeaker(aLog, bLog chat.Log) bot.ID {
	switch {
	case len(aLog) == 0 && len(bLog) == 0:
		return bot.A
	case len(aLog) == 0:
		return bot.A
	case len(bLog) == 0:
		return bot.B
	case len(aLog) < len(bLog):
		return bot.A
	default:
		return bot.B
	}
}

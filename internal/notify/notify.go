// Package notify pushes operational messages (degraded writes, sync
// results) to the event admin's Telegram chat. It is fire-and-forget:
// losing a notification never affects a check-in.
package notify

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notifier interface {
	Notify(text string)
}

// Nop is used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(string) {}

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Notify(text string) {
	go func() {
		msg := tgbotapi.NewMessage(t.chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			log.Printf("notify: %v", err)
		}
	}()
}

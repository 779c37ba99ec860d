package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain chat client with gopkg.in/telebot.v3.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a plain text message to a private chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string) error {
	_, err := tba.bot.Send(&telebot.User{ID: recipientChatID}, text)
	return err
}

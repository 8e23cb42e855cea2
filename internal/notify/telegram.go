package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/toolgate/toolgate/internal/schema"
)

// TelegramNotifier sends mutation alerts to one chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ schema.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier builds a notifier from a bot token and chat ID.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Notify sends the alert. The bot API has no context-aware send; the
// message is small enough that the default client timeout suffices.
func (t *TelegramNotifier) Notify(_ context.Context, e schema.AuditEntry) error {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, formatEntry(e)))
	return err
}

package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram delivers alerts to one chat and relays operator commands
// back.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects to the Telegram Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	bot.Debug = false

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Send delivers one message to the configured chat.
func (t *Telegram) Send(_ context.Context, text string) error {
	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Listen relays operator commands from the chat until ctx is done.
// Messages from other chats and unrecognized text are dropped.
func (t *Telegram) Listen(ctx context.Context) <-chan Command {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	out := make(chan Command)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case up := <-updates:
				if up.Message == nil || up.Message.Chat.ID != t.chatID {
					continue
				}
				cmd, ok := ParseCommand(up.Message.Text)
				if !ok {
					continue
				}
				select {
				case out <- cmd:
				case <-ctx.Done():
					t.bot.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}

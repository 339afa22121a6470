// ABOUTME: Telegram bot channel used as the native notification transport.
// ABOUTME: Permission derives from the configured token and chat id.
package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramChannel sends notifications as Telegram messages.
type TelegramChannel struct {
	token  string
	chatID int64

	mu         sync.Mutex
	bot        botSender
	permission Permission
	newBot     func(token string) (botSender, error)
}

// NewTelegramChannel builds a channel. An empty token makes it unsupported;
// a token without a chat id leaves permission at default.
func NewTelegramChannel(token string, chatID int64) *TelegramChannel {
	t := &TelegramChannel{
		token:  token,
		chatID: chatID,
		newBot: func(token string) (botSender, error) {
			bot, err := tgbotapi.NewBotAPI(token)
			if err != nil {
				return nil, err
			}
			return bot, nil
		},
	}
	if token == "" {
		t.permission = Unsupported
	} else {
		t.permission = Default
	}
	return t
}

func (t *TelegramChannel) Permission() Permission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.permission
}

// RequestPermission validates the token against the Bot API.
func (t *TelegramChannel) RequestPermission(ctx context.Context) (Permission, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.permission == Unsupported || t.permission == Granted {
		return t.permission, nil
	}
	if err := ctx.Err(); err != nil {
		return t.permission, err
	}
	if t.chatID == 0 {
		t.permission = Denied
		return Denied, fmt.Errorf("telegram chat id not configured")
	}

	bot, err := t.newBot(t.token)
	if err != nil {
		t.permission = Denied
		return Denied, fmt.Errorf("connect telegram bot: %w", err)
	}
	t.bot = bot
	t.permission = Granted
	return Granted, nil
}

func (t *TelegramChannel) Send(ctx context.Context, title string, opts Options) error {
	t.mu.Lock()
	bot := t.bot
	chatID := t.chatID
	t.mu.Unlock()

	if bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, Format(title, opts))
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

package infrastructure

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// TelegramClient implements interfaces.Messenger over the Bot API. Outbound
// sends share one limiter so broadcast and scheduler fan-outs stay under the
// Bot API's ~30 messages/second ceiling.
type TelegramClient struct {
	Bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &TelegramClient{
		Bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(25), 25),
	}, nil
}

// Username returns the bot's own username, used to strip /cmd@botname
// addressing and group mentions.
func (t *TelegramClient) Username() string {
	return t.Bot.Self.UserName
}

func (t *TelegramClient) SendMessage(chatID int64, text string) error {
	if err := t.limiter.Wait(context.Background()); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := t.Bot.Send(msg)
	return err
}

// SendMarkdown sends formatted text and retries unformatted when the Bot API
// rejects the markup. A formatting failure must not fail the interaction.
func (t *TelegramClient) SendMarkdown(chatID int64, text string) error {
	if err := t.limiter.Wait(context.Background()); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.Bot.Send(msg); err != nil {
		msg.ParseMode = ""
		_, err = t.Bot.Send(msg)
		return err
	}
	return nil
}

func (t *TelegramClient) SendPoll(chatID int64, question string, options []string) error {
	if err := t.limiter.Wait(context.Background()); err != nil {
		return err
	}
	poll := tgbotapi.NewPoll(chatID, question, options...)
	poll.IsAnonymous = true
	_, err := t.Bot.Send(poll)
	return err
}

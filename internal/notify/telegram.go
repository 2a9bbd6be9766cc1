package notify

import (
	"context"
	"fmt"
	"time"

	"sol-volume-bot/internal/api"
	"sol-volume-bot/internal/interfaces"
)

// Telegram delivers session and payment notifications through the Bot API.
type Telegram struct {
	client *api.Client
	token  string
}

var _ interfaces.Notifier = (*Telegram)(nil)

func NewTelegram(token string) *Telegram {
	return &Telegram{
		client: api.NewClient(api.WithTimeout(15 * time.Second)),
		token:  token,
	}
}

type sendMessageRequest struct {
	ChatID      int64        `json:"chat_id"`
	Text        string       `json:"text"`
	ParseMode   string       `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineBoard `json:"reply_markup,omitempty"`
}

type inlineBoard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts a plain text message to the chat.
func (t *Telegram) Send(ctx context.Context, channelID int64, text string) error {
	return t.send(ctx, sendMessageRequest{ChatID: channelID, Text: text})
}

// SendWithCancel posts a message with an inline stop button. Pressing the
// button emits cancelKey as callback data, which the dialog layer routes to
// the matching session or watcher.
func (t *Telegram) SendWithCancel(ctx context.Context, channelID int64, text, cancelKey string) error {
	return t.send(ctx, sendMessageRequest{
		ChatID: channelID,
		Text:   text,
		ReplyMarkup: &inlineBoard{
			InlineKeyboard: [][]inlineButton{
				{{Text: "Stop", CallbackData: cancelKey}},
			},
		},
	})
}

func (t *Telegram) send(ctx context.Context, req sendMessageRequest) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)
	resp, err := t.client.POST(ctx, url, req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	var parsed sendMessageResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return fmt.Errorf("telegram send: parse response: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram send: %s", parsed.Description)
	}
	return nil
}

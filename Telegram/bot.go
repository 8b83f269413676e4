package Telegram

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kiru56776/AI-math/Relay"
	"github.com/kiru56776/AI-math/misc"
)

// Bot implements Relay.Messenger over the Telegram Bot API. Outbound text is
// escaped for MarkdownV2 exactly once here; when Telegram rejects the markup
// the message is resent once as plain text so the user still gets an answer.
type Bot struct {
	api   *tgbotapi.BotAPI
	httpc *http.Client
}

func NewBot(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:   api,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Username returns the authorized bot account name.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Reply sends text as a reply to the given message.
func (b *Bot) Reply(chat int64, replyTo int, text string) (Relay.MessageRef, error) {
	msg := tgbotapi.NewMessage(chat, EscapeMarkdownV2(text))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if replyTo != 0 {
		msg.ReplyToMessageID = replyTo
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		misc.Debug("Reply: MarkdownV2 send rejected, resending plain: %v", err)
		plain := tgbotapi.NewMessage(chat, text)
		if replyTo != 0 {
			plain.ReplyToMessageID = replyTo
		}
		sent, err = b.api.Send(plain)
		if err != nil {
			return Relay.MessageRef{}, err
		}
	}
	return Relay.MessageRef{Chat: sent.Chat.ID, MessageID: sent.MessageID}, nil
}

// Edit replaces the text of a previously sent message.
func (b *Bot) Edit(ref Relay.MessageRef, text string) error {
	edit := tgbotapi.NewEditMessageText(ref.Chat, ref.MessageID, EscapeMarkdownV2(text))
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.api.Send(edit); err != nil {
		misc.Debug("Edit: MarkdownV2 edit rejected, retrying plain: %v", err)
		plain := tgbotapi.NewEditMessageText(ref.Chat, ref.MessageID, text)
		_, err = b.api.Send(plain)
		return err
	}
	return nil
}

// FetchMedia downloads the raw bytes behind a Telegram file handle.
func (b *Bot) FetchMedia(mediaRef string) (string, []byte, error) {
	fileURL, err := b.api.GetFileDirectURL(mediaRef)
	if err != nil {
		return "", nil, err
	}
	resp, err := b.httpc.Get(fileURL)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return "", nil, err
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || strings.HasPrefix(mimeType, "application/octet-stream") {
		// Telegram photo downloads are JPEG unless the headers say otherwise.
		mimeType = "image/jpeg"
	}
	return mimeType, data, nil
}

// RegisterWebhook points Telegram at publicURL/webhook/<token>.
func (b *Bot) RegisterWebhook(publicURL, token string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(publicURL, "/") + "/webhook/" + token)
	if err != nil {
		return err
	}
	_, err = b.api.Request(wh)
	return err
}

// DeleteWebhook removes any registered webhook.
func (b *Bot) DeleteWebhook() error {
	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	return err
}

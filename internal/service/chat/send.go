package chat

import (
	"context"

	"github.com/medassist/medchat/internal/logger"
	"github.com/medassist/medchat/internal/model/chat"
	"github.com/medassist/medchat/internal/service/transport"
)

// Send runs one full exchange on conv: the user's message is appended, the
// sender is called once, and the reply (or errorText on failure) is appended.
// Blank input and busy conversations come back unchanged with
// chat.ErrBlankInput or chat.ErrBusy.
func Send(ctx context.Context, conv chat.Conversation, text string, sender transport.Sender, errorText string) (chat.Conversation, error) {
	pending, _, err := conv.Begin(text)
	if err != nil {
		return conv, err
	}

	done, _, err := pending.Complete(replyText(sender.Send(ctx, text), errorText))
	if err != nil {
		return pending, err
	}
	return done, nil
}

// replyText maps a transport result onto the text of the bot's message.
func replyText(res transport.Result, errorText string) string {
	switch r := res.(type) {
	case transport.Success:
		return r.Text
	case transport.Failure:
		logger.WarnCF("chat", "message delivery failed", map[string]any{
			"kind":   string(r.Kind),
			"status": r.StatusCode,
			"error":  r.Error(),
		})
		return errorText
	default:
		logger.ErrorCF("chat", "unknown transport result", map[string]any{"type": r})
		return errorText
	}
}

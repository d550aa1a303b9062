// Package notify hands rendered order summaries to the seller's messaging channel.
// Every channel is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"log/slog"
	"net/url"
)

// Notifier delivers text to a destination phone number.
type Notifier interface {
	Send(ctx context.Context, destination, text string)
}

// WhatsAppLink is the deep link that opens a chat with destination prefilled with text.
func WhatsAppLink(destination, text string) string {
	if destination == "" {
		return ""
	}
	return "https://wa.me/" + destination + "?" + url.Values{"text": {text}}.Encode()
}

// LogNotifier records the hand-off in the log. Used when no queue is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, destination, text string) {
	n.Logger.InfoContext(ctx, "order notification ready",
		"destination", destination,
		"link", WhatsAppLink(destination, text))
}

// Multi fans a notification out to several channels.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, destination, text string) {
	for _, n := range m {
		n.Send(ctx, destination, text)
	}
}

package notify

import (
	"context"

	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/logger"
)

// LogNotifier routes notifications to the structured log. Used in DRY_RUN
// mode and whenever Telegram delivery is disabled.
type LogNotifier struct{}

var _ interfaces.Notifier = (*LogNotifier)(nil)

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (l *LogNotifier) Send(ctx context.Context, channelID int64, text string) error {
	logger.Info(ctx, "Notification", "channel", channelID, "text", text)
	return nil
}

func (l *LogNotifier) SendWithCancel(ctx context.Context, channelID int64, text, cancelKey string) error {
	logger.Info(ctx, "Notification", "channel", channelID, "text", text, "cancel_key", cancelKey)
	return nil
}

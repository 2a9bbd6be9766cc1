package interfaces

import "context"

// Notifier delivers progress messages to the owning channel. Fire and
// forget from the engines' perspective; a send failure never terminates a
// loop.
type Notifier interface {
	Send(ctx context.Context, channelID int64, text string) error
	// SendWithCancel attaches a cancel affordance; activating it feeds
	// cancelKey back into the session registry's stop path.
	SendWithCancel(ctx context.Context, channelID int64, text, cancelKey string) error
}

package channel

import (
	"context"

	"pingbot/pkg/zulip"
)

// Handler processes one inbound platform message. Messages that do not
// trigger the bot are a no-op with a nil error.
type Handler func(context.Context, zulip.Message) error

// Adapter bridges one external transport (for example a Zulip event queue)
// into the bot.
type Adapter interface {
	Name() string
	Run(context.Context, Handler) error
}

package zulip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pingbot/pkg/channel"
	zulipapi "pingbot/pkg/zulip"
)

const channelName = "zulip"
const messagePreviewLimit = 240
const pollRetryDelay = 2 * time.Second

// EventSource is the slice of the Zulip client the adapter needs.
type EventSource interface {
	Register(ctx context.Context) (queueID string, lastEventID int64, err error)
	Events(ctx context.Context, queueID string, lastEventID int64) ([]zulipapi.Event, error)
}

// Adapter long-polls a Zulip event queue and forwards message events through
// the shared channel handler.
type Adapter struct {
	source   EventSource
	botEmail string
	log      *slog.Logger
}

// NewAdapter constructs an adapter over an event source. botEmail is the
// bot's own address; its messages are never forwarded to the handler.
func NewAdapter(source EventSource, botEmail string, log *slog.Logger) (*Adapter, error) {
	if source == nil {
		return nil, errors.New("event source is required")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Adapter{
		source:   source,
		botEmail: strings.TrimSpace(botEmail),
		log:      log.With("component", "channel.zulip"),
	}, nil
}

// Name returns the channel identifier used in status reports and logs.
func (a *Adapter) Name() string {
	return channelName
}

// Run registers an event queue and polls it until the context ends. Handler
// failures are logged and the loop continues; registration and authorization
// failures abort the adapter.
func (a *Adapter) Run(ctx context.Context, handler channel.Handler) error {
	if handler == nil {
		return errors.New("handler is required")
	}

	queueID, lastEventID, err := a.source.Register(ctx)
	if err != nil {
		return fmt.Errorf("register event queue: %w", err)
	}
	a.log.Info("Zulip channel started", "queue_id", queueID)

	for {
		if ctx.Err() != nil {
			return nil
		}

		events, err := a.source.Events(ctx, queueID, lastEventID)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, zulipapi.ErrUnauthorized) {
				return err
			}
			if zulipapi.IsBadEventQueue(err) || errors.Is(err, zulipapi.ErrMalformedResponse) {
				// A fresh queue delivers only new events, so an undecodable
				// pending event is dropped instead of blocking the poll forever.
				a.log.Warn("Event queue unusable, re-registering", "error", err)
				queueID, lastEventID, err = a.source.Register(ctx)
				if err != nil {
					return fmt.Errorf("re-register event queue: %w", err)
				}
				continue
			}

			a.log.Error("Event poll failed", "error", err)
			if !sleepCtx(ctx, pollRetryDelay) {
				return nil
			}
			continue
		}

		for _, event := range events {
			if event.ID > lastEventID {
				lastEventID = event.ID
			}
			if event.Type != "message" || event.Message == nil {
				continue
			}

			msg := *event.Message
			if msg.Type != "stream" {
				// Private messages have no topic history to scan.
				continue
			}
			if a.botEmail != "" && strings.EqualFold(msg.SenderEmail, a.botEmail) {
				continue
			}

			a.log.Debug("Received message",
				"stream", msg.DisplayRecipient,
				"topic", msg.Subject,
				"sender", msg.SenderEmail,
				"content", previewText(msg.Content),
			)

			if err := handler(ctx, msg); err != nil {
				a.log.Error("Failed to process message",
					"stream", msg.DisplayRecipient,
					"topic", msg.Subject,
					"error", err,
				)
			}
		}
	}
}

// previewText returns a bounded log-safe preview of message text.
func previewText(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= messagePreviewLimit {
		return trimmed
	}

	return trimmed[:messagePreviewLimit] + "..."
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

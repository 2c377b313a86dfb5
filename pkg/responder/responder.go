package responder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pingbot/pkg/config"
	"pingbot/pkg/zulip"
)

// SendFunc dispatches one outgoing message through the platform client.
type SendFunc func(ctx context.Context, msg zulip.OutgoingMessage) error

// Responder turns keyword-triggered messages into participant pings. Each
// invocation runs its own independent scan with no shared mutable state, so
// concurrent deliveries need no locking.
type Responder struct {
	keyword      string
	shortKeyword string
	paginator    *Paginator
	collector    Collector
	send         SendFunc
	now          func() time.Time
	log          *slog.Logger
}

// New wires a responder over the injected fetch and send capabilities.
func New(cfg config.BotConfig, fetch FetchFunc, send SendFunc, log *slog.Logger) *Responder {
	if log == nil {
		log = slog.Default()
	}

	collector := NewCollector(cfg.BotEmailSuffix)

	return &Responder{
		keyword:      strings.ToLower(strings.TrimSpace(cfg.Keyword)),
		shortKeyword: strings.ToLower(strings.TrimSpace(cfg.ShortKeyword)),
		paginator:    NewPaginator(fetch, collector, log),
		collector:    collector,
		send:         send,
		now:          time.Now,
		log:          log.With("component", "responder"),
	}
}

// HandleMessage inspects one inbound message and, when its first word matches
// the trigger keyword, scans the topic's history and dispatches a ping reply.
// Non-trigger messages are a silent no-op. A fetch or send failure aborts the
// invocation and surfaces to the caller; no reply is sent.
func (r *Responder) HandleMessage(ctx context.Context, msg zulip.Message) error {
	first, trailing := splitFirstToken(msg.Content)
	if first == "" {
		return nil
	}
	if keyword := strings.ToLower(first); keyword != r.keyword && keyword != r.shortKeyword {
		return nil
	}

	now := r.now()
	query := Parse(trailing, now)

	if query.Count > 0 {
		return r.pingLastParticipants(ctx, msg, query)
	}

	cutoff := query.Cutoff
	if !query.HasCutoff() {
		// Unparseable or missing specification: widest allowed window.
		cutoff = DefaultCutoff(now)
	}

	return r.pingWindowParticipants(ctx, msg, cutoff, now, query.Note)
}

func (r *Responder) pingWindowParticipants(ctx context.Context, msg zulip.Message, cutoff, now time.Time, note string) error {
	messages, err := r.paginator.ScanWindow(ctx, cutoff, msg.DisplayRecipient, msg.Subject)
	if err != nil {
		return err
	}

	participants := r.collector.Collect(messages, msg.SenderFullName)
	r.log.Info("Pinging window participants",
		"stream", msg.DisplayRecipient,
		"topic", msg.Subject,
		"cutoff", cutoff,
		"participants", len(participants),
	)

	return r.send(ctx, ComposeWindow(msg, participants, cutoff, now, note))
}

func (r *Responder) pingLastParticipants(ctx context.Context, msg zulip.Message, query Query) error {
	participants, err := r.paginator.ScanForCount(ctx, query.Count, msg.DisplayRecipient, msg.Subject, msg.SenderFullName)
	if err != nil {
		return err
	}

	r.log.Info("Pinging last participants",
		"stream", msg.DisplayRecipient,
		"topic", msg.Subject,
		"target", query.Count,
		"participants", len(participants),
	)

	return r.send(ctx, ComposeCount(msg, participants, query.Note))
}

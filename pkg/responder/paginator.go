package responder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"pingbot/pkg/zulip"
)

// ChunkSize is the number of messages requested per history fetch.
const ChunkSize = 5000

// maxAnchor is the store's sentinel anchor meaning "start from the newest
// message".
const maxAnchor = uint64(math.MaxUint64)

// FetchFunc retrieves up to limit messages from a stream ending at anchor,
// walking backward in time. Chunks come back oldest-first.
type FetchFunc func(ctx context.Context, stream string, anchor uint64, limit int) ([]zulip.Message, error)

// Paginator walks a stream's history backward in bounded chunks. Each scan is
// independent; no state survives between calls.
type Paginator struct {
	fetch     FetchFunc
	collector Collector
	now       func() time.Time
	log       *slog.Logger
}

// NewPaginator constructs a paginator over the given fetch capability.
func NewPaginator(fetch FetchFunc, collector Collector, log *slog.Logger) *Paginator {
	if log == nil {
		log = slog.Default()
	}

	return &Paginator{
		fetch:     fetch,
		collector: collector,
		now:       time.Now,
		log:       log.With("component", "responder.paginator"),
	}
}

// ScanWindow collects every message in the stream's topic newer than cutoff,
// in ascending time order. The walk stops once a chunk reaches past the
// cutoff, or when the store runs out of history (an empty or short chunk).
func (p *Paginator) ScanWindow(ctx context.Context, cutoff time.Time, stream, topic string) ([]zulip.Message, error) {
	anchor := maxAnchor
	earliest := p.now()

	var matched []zulip.Message
	for earliest.After(cutoff) {
		chunk, err := p.fetch(ctx, stream, anchor, ChunkSize)
		if err != nil {
			return nil, fmt.Errorf("fetch history chunk: %w", err)
		}
		if len(chunk) == 0 {
			break
		}

		oldest := chunk[0]
		earliest = oldest.Time()
		anchor = oldest.ID

		var keep []zulip.Message
		for _, msg := range chunk {
			if msg.Subject == topic && msg.Time().After(cutoff) {
				keep = append(keep, msg)
			}
		}
		// Older chunks go in front so the result stays in ascending time order.
		matched = append(keep, matched...)

		if len(chunk) < ChunkSize {
			break
		}
	}

	p.log.Debug("Window scan finished", "stream", stream, "topic", topic, "matched", len(matched))
	return matched, nil
}

// ScanForCount walks backward until target distinct participants are
// collected, interleaving fetch and filtering. The default lookback cutoff is
// a hard stop even when the target is never reached. Within each chunk
// senders are admitted oldest to newest when all of: not yet collected, not
// automated, not the issuer, and posted in the topic.
func (p *Paginator) ScanForCount(ctx context.Context, target int, stream, topic, issuer string) ([]string, error) {
	now := p.now()
	floor := DefaultCutoff(now)

	anchor := maxAnchor
	earliest := now

	participants := make([]string, 0, target)
	seen := make(map[string]struct{}, target)

	for earliest.After(floor) && len(participants) < target {
		chunk, err := p.fetch(ctx, stream, anchor, ChunkSize)
		if err != nil {
			return nil, fmt.Errorf("fetch history chunk: %w", err)
		}
		if len(chunk) == 0 {
			break
		}

		earliest = chunk[0].Time()
		anchor = chunk[0].ID

		for _, msg := range chunk {
			token := MentionToken(msg.SenderFullName)
			if _, dup := seen[token]; dup {
				continue
			}
			if p.collector.Automated(msg) || msg.SenderFullName == issuer || msg.Subject != topic {
				continue
			}

			seen[token] = struct{}{}
			participants = append(participants, token)
			if len(participants) >= target {
				break
			}
		}

		if len(chunk) < ChunkSize {
			break
		}
	}

	p.log.Debug("Count scan finished", "stream", stream, "topic", topic, "collected", len(participants), "target", target)
	return participants, nil
}

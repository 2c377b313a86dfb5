package responder

import (
	"strings"

	"github.com/samber/lo"

	"pingbot/pkg/zulip"
)

const (
	pingPrefix = "@**"
	pingSuffix = "**"
)

// MentionToken renders the mention reference for a sender's display name.
func MentionToken(senderFullName string) string {
	return pingPrefix + senderFullName + pingSuffix
}

// Collector filters message senders into mention tokens.
type Collector struct {
	botSuffix string
}

// NewCollector builds a collector that treats senders whose address contains
// botSuffix as automated.
func NewCollector(botSuffix string) Collector {
	return Collector{botSuffix: strings.TrimSpace(botSuffix)}
}

// Automated reports whether a message was sent by a bot account.
func (c Collector) Automated(msg zulip.Message) bool {
	if c.botSuffix == "" {
		return false
	}

	return strings.Contains(msg.SenderEmail, c.botSuffix)
}

// Collect maps messages to deduplicated mention tokens, preserving first-seen
// order. Automated senders and the issuer are excluded. Pure function of its
// inputs.
func (c Collector) Collect(messages []zulip.Message, issuer string) []string {
	tokens := lo.FilterMap(messages, func(msg zulip.Message, _ int) (string, bool) {
		if c.Automated(msg) || msg.SenderFullName == issuer {
			return "", false
		}
		return MentionToken(msg.SenderFullName), true
	})

	return lo.Uniq(tokens)
}

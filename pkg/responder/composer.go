package responder

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"pingbot/pkg/zulip"
)

const timestampLayout = "01/02/06 15:04:05"

// ComposeWindow renders the reply for a time-window ping, addressed back to
// the trigger's own stream and topic.
func ComposeWindow(trigger zulip.Message, participants []string, cutoff, now time.Time, note string) zulip.OutgoingMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Pinging all participants from %s (%s to %s)\n%s",
		humanize.RelTime(cutoff, now, "ago", "from now"),
		cutoff.Format(timestampLayout),
		now.Format(timestampLayout),
		strings.Join(participants, " "),
	)
	appendNote(&b, trigger.SenderFullName, note)

	return trigger.Reply(b.String())
}

// ComposeCount renders the reply for a last-N-participants ping. The count
// shown is the number actually collected, which may fall short of the
// requested target.
func ComposeCount(trigger zulip.Message, participants []string, note string) zulip.OutgoingMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Pinging last %d participants\n%s",
		len(participants),
		strings.Join(participants, " "),
	)
	appendNote(&b, trigger.SenderFullName, note)

	return trigger.Reply(b.String())
}

func appendNote(b *strings.Builder, issuer, note string) {
	if strings.TrimSpace(note) == "" {
		return
	}

	fmt.Fprintf(b, "\n**%s:** %s", issuer, note)
}

package responder

import (
	"strings"
	"testing"
	"time"

	"pingbot/pkg/zulip"
)

func triggerMessage() zulip.Message {
	return zulip.Message{
		ID:               42,
		SenderFullName:   "Dave",
		SenderEmail:      "dave@example.com",
		DisplayRecipient: "general",
		Subject:          "standup",
		Type:             "stream",
	}
}

func TestComposeWindowAddressesTriggerOrigin(t *testing.T) {
	cutoff := time.Date(2015, 3, 13, 0, 0, 0, 0, time.UTC)
	out := ComposeWindow(triggerMessage(), []string{"@**Alice**", "@**Bob**"}, cutoff, testNow, "")

	if out.To != "general" {
		t.Fatalf("out.To = %q, want %q", out.To, "general")
	}
	if out.Topic != "standup" {
		t.Fatalf("out.Topic = %q, want %q", out.Topic, "standup")
	}
	if out.Type != "stream" {
		t.Fatalf("out.Type = %q, want %q", out.Type, "stream")
	}

	if !strings.HasPrefix(out.Content, "Pinging all participants from ") {
		t.Fatalf("unexpected content prefix: %q", out.Content)
	}
	if !strings.Contains(out.Content, "(03/13/15 00:00:00 to 03/18/15 17:10:14)") {
		t.Fatalf("content missing timestamp range: %q", out.Content)
	}

	lines := strings.Split(out.Content, "\n")
	if len(lines) != 2 {
		t.Fatalf("content has %d lines, want 2: %q", len(lines), out.Content)
	}
	if lines[1] != "@**Alice** @**Bob**" {
		t.Fatalf("mention line = %q, want %q", lines[1], "@**Alice** @**Bob**")
	}
}

func TestComposeCountReportsCollectedTotal(t *testing.T) {
	out := ComposeCount(triggerMessage(), []string{"@**Alice**", "@**Bob**"}, "")

	want := "Pinging last 2 participants\n@**Alice** @**Bob**"
	if out.Content != want {
		t.Fatalf("content = %q, want %q", out.Content, want)
	}
}

func TestComposeAppendsIssuerNote(t *testing.T) {
	out := ComposeCount(triggerMessage(), []string{"@**Alice**"}, "see you at 3pm")

	want := "Pinging last 1 participants\n@**Alice**\n**Dave:** see you at 3pm"
	if out.Content != want {
		t.Fatalf("content = %q, want %q", out.Content, want)
	}
}

func TestComposeSkipsBlankNote(t *testing.T) {
	out := ComposeCount(triggerMessage(), []string{"@**Alice**"}, "   ")

	if strings.Contains(out.Content, "**Dave:**") {
		t.Fatalf("content carries a note line: %q", out.Content)
	}
}

package zulip

import (
	"bytes"
	"encoding/json"
	"time"
)

// Message is one message record as returned by the Zulip messages API.
//
// ID is the platform-assigned monotonic id used as the pagination anchor.
// DisplayRecipient is the stream name for stream messages.
type Message struct {
	ID               uint64 `json:"id"`
	Timestamp        int64  `json:"timestamp"`
	SenderFullName   string `json:"sender_full_name"`
	SenderEmail      string `json:"sender_email"`
	DisplayRecipient string `json:"display_recipient"`
	Subject          string `json:"subject"`
	Content          string `json:"content"`
	Type             string `json:"type"`
}

// UnmarshalJSON tolerates both recipient encodings: stream messages carry the
// stream name as a string, private messages carry a recipient list. The list
// form decodes to an empty stream name.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	aux := struct {
		*plain
		DisplayRecipient json.RawMessage `json:"display_recipient"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.DisplayRecipient)
	if len(raw) == 0 || raw[0] != '"' {
		return nil
	}

	return json.Unmarshal(raw, &m.DisplayRecipient)
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.Unix(m.Timestamp, 0)
}

// OutgoingMessage is the payload for the send-message API.
type OutgoingMessage struct {
	Type    string
	To      string
	Topic   string
	Content string
}

// Reply builds an outgoing message addressed to the channel and topic the
// trigger message came from.
func (m Message) Reply(content string) OutgoingMessage {
	return OutgoingMessage{
		Type:    m.Type,
		To:      m.DisplayRecipient,
		Topic:   m.Subject,
		Content: content,
	}
}

// Event is one entry from the events long-poll endpoint.
type Event struct {
	ID      int64    `json:"id"`
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}

// Stream describes one stream from the streams listing endpoint.
type Stream struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

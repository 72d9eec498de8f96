package domain

import "time"

// MaxMessageLength bounds the trimmed message body, matching the limit
// enforced by the persisted message schema.
const MaxMessageLength = 1000

// Message is one chat message. Exactly one of Room or Receiver is set:
// Room for room-addressed messages, Receiver for direct messages.
// ID and Timestamp are assigned by the message store on persist.
type Message struct {
	ID         string    `json:"_id"`
	Sender     string    `json:"sender"`
	SenderName string    `json:"senderName"`
	Receiver   string    `json:"receiver,omitempty"`
	Room       string    `json:"room,omitempty"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// IsDirect reports whether the message is addressed to a single user.
func (m Message) IsDirect() bool {
	return m.Receiver != ""
}

package domain

import "time"

// TypingExpiry is how long a typing flag stays valid without a refresh.
// Records older than this read as not-typing even before they are purged.
const TypingExpiry = 5 * time.Second

// TypingStatus is the transient "user is composing" flag, keyed per user.
type TypingStatus struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	IsTyping   bool      `json:"isTyping"`
	LastTyping time.Time `json:"lastTyping"`
}

// Active reports whether the record still counts as typing at the given
// instant, applying the expiry window.
func (t TypingStatus) Active(now time.Time) bool {
	return t.IsTyping && now.Sub(t.LastTyping) < TypingExpiry
}

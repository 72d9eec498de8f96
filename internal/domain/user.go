package domain

import "time"

// PresenceRecord describes one online user. A record exists while the user
// has at least one live connection; presence is keyed by user id, not by
// connection id.
type PresenceRecord struct {
	UserID      string    `json:"userId"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar,omitempty"`
	OnlineSince time.Time `json:"onlineSince"`
	LastSeen    time.Time `json:"lastSeen"`
}

package domain

import "time"

// SystemUser is the creator recorded for rooms the server itself owns,
// such as the default room.
const SystemUser = "system"

// Room is a named broadcast group. The room name is the primary key.
type Room struct {
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	// IsPrivate is reserved for access control by outer layers; the
	// engine records it but does not enforce it.
	IsPrivate   bool `json:"isPrivate"`
	MemberCount int  `json:"memberCount"`
}

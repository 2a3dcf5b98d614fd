package store

import "time"

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeleted   Status = "deleted"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled, StatusDeleted:
		return true
	}
	return false
}

// CanTransition reports whether the status transition is legal:
//
//	active    -> completed | cancelled | deleted
//	cancelled -> active
//	completed -> deleted
//
// deleted is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled || to == StatusDeleted
	case StatusCancelled:
		return to == StatusActive
	case StatusCompleted:
		return to == StatusDeleted
	}
	return false
}

// Campaign pairs a Discord message and emoji with a future reminder time.
type Campaign struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	ChannelID string    `json:"channel_id"`
	MessageID string    `json:"message_id"`
	Emoji     string    `json:"emoji"`
	RemindAt  time.Time `json:"remind_at"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
}

// OptIn records one user's reaction to a campaign's tracked emoji. Inserted
// exactly once per (campaign, user); never updated.
type OptIn struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaign_id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	TalliedAt  time.Time `json:"tallied_at"`
}

// ReminderLog is the audit entry for one broadcast attempt. Exactly one row is
// written per send invocation, successful or not.
type ReminderLog struct {
	ID             int64     `json:"id"`
	CampaignID     int64     `json:"campaign_id"`
	SentAt         time.Time `json:"sent_at"`
	RecipientCount int       `json:"recipient_count"`
	MessageChunks  int       `json:"message_chunks"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}

package entities

import "time"

// Chat is a tracked chat or user, recorded on first observed interaction.
type Chat struct {
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username"`
	ChatType  string    `json:"chat_type"`
	FirstSeen time.Time `json:"first_seen"`
}

// Broadcast audience targets accepted by /schedule_message and /broadcast.
const (
	TargetIndividuals = "individuals"
	TargetGroups      = "groups"
	TargetAll         = "all"
)

package entities

import "time"

// ScheduledBroadcast is a persisted time-delayed message. It is created
// pending and ends up either delivered (Sent flips to true, once) or
// cancelled (row deleted). No other transitions exist.
type ScheduledBroadcast struct {
	ID       int64     `json:"id"`
	Target   string    `json:"target"` // individuals | groups | all
	Text     string    `json:"text"`
	SendTime time.Time `json:"send_time"`
	Sent     bool      `json:"sent"`
}

package models

import "time"

// ReminderStatus — статус напоминания. failed является терминальным:
// автоматических повторов нет.
type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
	ReminderFailed  ReminderStatus = "failed"
)

// Reminder is a scheduled one-shot notification about a tournament or a
// match room, picked up by the background scheduler once RemindAt passes.
type Reminder struct {
	ID           int            `json:"id" db:"id"`
	TenantID     int            `json:"tenant_id" db:"tenant_id"`
	TournamentID *int           `json:"tournament_id,omitempty" db:"tournament_id"`
	MatchRoomID  *int           `json:"match_room_id,omitempty" db:"match_room_id"`
	Recipient    string         `json:"recipient" db:"recipient"`
	Subject      string         `json:"subject" db:"subject"`
	Message      string         `json:"message" db:"message"`
	RemindAt     time.Time      `json:"remind_at" db:"remind_at"`
	Status       ReminderStatus `json:"status" db:"status"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

package models

import "time"

// MatchRoom identifies one match inside a stage of a tournament, unique by
// (tournament_id, stage_number, match_number). RoomCode and RoomPassword are
// never serialized: clients obtain them only through the dedicated
// credentials endpoint once the room is published.
type MatchRoom struct {
	ID           int        `json:"id" db:"id"`
	TenantID     int        `json:"tenant_id" db:"tenant_id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	StageNumber  int        `json:"stage_number" db:"stage_number"`
	MatchNumber  int        `json:"match_number" db:"match_number"`
	MapName      *string    `json:"map_name,omitempty" db:"map_name"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	RoomCode     string     `json:"-" db:"room_code"`
	RoomPassword string     `json:"-" db:"room_password"`
	IsPublished  bool       `json:"is_published" db:"is_published"`
	PublishedAt  *time.Time `json:"published_at,omitempty" db:"published_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// RoomCredentials is the only representation in which connection
// credentials ever leave the service layer.
type RoomCredentials struct {
	RoomCode     string `json:"room_code"`
	RoomPassword string `json:"room_password"`
}

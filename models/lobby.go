package models

import "time"

// LobbyStatus представляет статусы записи в лобби, соответствующие ENUM в БД.
type LobbyStatus string

const (
	LobbyAssigned   LobbyStatus = "assigned"
	LobbyCheckedIn  LobbyStatus = "checked_in"
	LobbyEliminated LobbyStatus = "eliminated"
	LobbyQualified  LobbyStatus = "qualified"
)

// LobbyEntry links one team to one numbered slot of one tournament.
// TeamName and CaptainName are snapshots taken at join time and are never
// re-synced, so historical lobbies survive later team renames.
type LobbyEntry struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	TeamID       int         `json:"team_id" db:"team_id"`
	SlotNumber   int         `json:"slot_number" db:"slot_number"`
	TeamName     string      `json:"team_name" db:"team_name"`
	CaptainName  string      `json:"captain_name" db:"captain_name"`
	Status       LobbyStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

package models

import "time"

// Result — одна строка результатов на пару (матч-комната, команда).
// После locked=true строка становится неизменяемой; это правило
// обеспечивает ResultService, единственная точка мутации.
type Result struct {
	ID          int       `json:"id" db:"id"`
	MatchRoomID int       `json:"match_room_id" db:"match_room_id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	Position    int       `json:"position" db:"position"`
	Kills       int       `json:"kills" db:"kills"`
	Points      int       `json:"points" db:"points"`
	Locked      bool      `json:"locked" db:"locked"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// StageResult is one aggregated row per (tournament, stage, team). It is
// entirely derived from locked results and safe to recompute at any time.
type StageResult struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	StageNumber   int       `json:"stage_number" db:"stage_number"`
	TeamID        int       `json:"team_id" db:"team_id"`
	TeamName      string    `json:"team_name" db:"team_name"`
	MatchesPlayed int       `json:"matches_played" db:"matches_played"`
	TotalKills    int       `json:"total_kills" db:"total_kills"`
	TotalPoints   int       `json:"total_points" db:"total_points"`
	Rank          int       `json:"rank" db:"rank"`
	Qualified     bool      `json:"qualified" db:"qualified"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

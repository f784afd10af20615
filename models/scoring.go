package models

import "time"

// TournamentScoring — настройка начисления очков для турнира: таблица
// очков за место плюс множитель за убийство. Не более одной на турнир.
type TournamentScoring struct {
	ID              int         `json:"id" db:"id"`
	TenantID        int         `json:"tenant_id" db:"tenant_id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	KillPoints      int         `json:"kill_points" db:"kill_points"`
	PlacementPoints map[int]int `json:"placement_points" db:"placement_points"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
}

// PointsFor computes the points a result earns under this config.
// Positions absent from the placement table earn placement zero.
func (s TournamentScoring) PointsFor(position, kills int) int {
	return s.PlacementPoints[position] + kills*s.KillPoints
}

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var ErrScoringNotFound = errors.New("tournament scoring not found")

type ScoringRepository interface {
	// Upsert keeps at most one scoring config per tournament.
	Upsert(ctx context.Context, s *models.TournamentScoring) error
	GetByTournament(ctx context.Context, tournamentID int) (*models.TournamentScoring, error)
	Delete(ctx context.Context, tenantID *int, tournamentID int) error
}

type postgresScoringRepository struct {
	db *sql.DB
}

func NewPostgresScoringRepository(db *sql.DB) ScoringRepository {
	return &postgresScoringRepository{db: db}
}

func (r *postgresScoringRepository) Upsert(ctx context.Context, s *models.TournamentScoring) error {
	placement, err := json.Marshal(s.PlacementPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal placement points: %w", err)
	}

	query := `
		INSERT INTO tournament_scoring (tenant_id, tournament_id, kill_points, placement_points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id) DO UPDATE
		SET kill_points = EXCLUDED.kill_points,
		    placement_points = EXCLUDED.placement_points
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		s.TenantID, s.TournamentID, s.KillPoints, placement,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament scoring: %w", err)
	}
	return nil
}

func (r *postgresScoringRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.TournamentScoring, error) {
	query := `
		SELECT id, tenant_id, tournament_id, kill_points, placement_points, created_at
		FROM tournament_scoring
		WHERE tournament_id = $1`

	s := &models.TournamentScoring{}
	var placement []byte
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&s.ID, &s.TenantID, &s.TournamentID, &s.KillPoints, &placement, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoringNotFound
		}
		return nil, fmt.Errorf("failed to get tournament scoring: %w", err)
	}
	if err := json.Unmarshal(placement, &s.PlacementPoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal placement points: %w", err)
	}
	return s, nil
}

func (r *postgresScoringRepository) Delete(ctx context.Context, tenantID *int, tournamentID int) error {
	query := `DELETE FROM tournament_scoring WHERE tournament_id = $1 AND ($2::int IS NULL OR tenant_id = $2)`
	result, err := r.db.ExecContext(ctx, query, tournamentID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete tournament scoring: %w", err)
	}
	return checkAffectedRows(result, ErrScoringNotFound)
}

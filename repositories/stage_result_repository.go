package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var ErrStageResultNotFound = errors.New("stage result not found")

type StageResultRepository interface {
	// Upsert overwrites aggregated values keyed on (tournament, stage, team),
	// which makes aggregation idempotent and re-runnable. The qualified flag
	// is deliberately left untouched on conflict; it is owned by
	// SetQualified/ClearQualified.
	Upsert(ctx context.Context, exec SQLExecutor, sr *models.StageResult) error
	ListByStage(ctx context.Context, tournamentID, stageNumber int) ([]*models.StageResult, error)
	ClearQualified(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int) error
	SetQualified(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int, teamIDs []int) error
	DeleteByStage(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int) error
}

type postgresStageResultRepository struct {
	db *sql.DB
}

func NewPostgresStageResultRepository(db *sql.DB) StageResultRepository {
	return &postgresStageResultRepository{db: db}
}

func (r *postgresStageResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStageResultRepository) Upsert(ctx context.Context, exec SQLExecutor, sr *models.StageResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO stage_results (
			tournament_id, stage_number, team_id, team_name,
			matches_played, total_kills, total_points, rank, qualified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		ON CONFLICT (tournament_id, stage_number, team_id) DO UPDATE
		SET team_name = EXCLUDED.team_name,
		    matches_played = EXCLUDED.matches_played,
		    total_kills = EXCLUDED.total_kills,
		    total_points = EXCLUDED.total_points,
		    rank = EXCLUDED.rank,
		    updated_at = NOW()
		RETURNING id, qualified, updated_at`

	err := executor.QueryRowContext(ctx, query,
		sr.TournamentID, sr.StageNumber, sr.TeamID, sr.TeamName,
		sr.MatchesPlayed, sr.TotalKills, sr.TotalPoints, sr.Rank,
	).Scan(&sr.ID, &sr.Qualified, &sr.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert stage result for team %d: %w", sr.TeamID, err)
	}
	return nil
}

func (r *postgresStageResultRepository) ListByStage(ctx context.Context, tournamentID, stageNumber int) ([]*models.StageResult, error) {
	query := `
		SELECT id, tournament_id, stage_number, team_id, team_name,
		       matches_played, total_kills, total_points, rank, qualified, updated_at
		FROM stage_results
		WHERE tournament_id = $1 AND stage_number = $2
		ORDER BY rank ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.StageResult, 0)
	for rows.Next() {
		var sr models.StageResult
		if scanErr := rows.Scan(
			&sr.ID, &sr.TournamentID, &sr.StageNumber, &sr.TeamID, &sr.TeamName,
			&sr.MatchesPlayed, &sr.TotalKills, &sr.TotalPoints, &sr.Rank,
			&sr.Qualified, &sr.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", scanErr)
		}
		results = append(results, &sr)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresStageResultRepository) ClearQualified(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE stage_results SET qualified = FALSE, updated_at = NOW() WHERE tournament_id = $1 AND stage_number = $2`
	if _, err := executor.ExecContext(ctx, query, tournamentID, stageNumber); err != nil {
		return fmt.Errorf("failed to clear qualified flags: %w", err)
	}
	return nil
}

func (r *postgresStageResultRepository) SetQualified(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int, teamIDs []int) error {
	if len(teamIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		UPDATE stage_results SET qualified = TRUE, updated_at = NOW()
		WHERE tournament_id = $1 AND stage_number = $2 AND team_id = ANY($3)`
	if _, err := executor.ExecContext(ctx, query, tournamentID, stageNumber, pq.Array(teamIDs)); err != nil {
		return fmt.Errorf("failed to set qualified flags: %w", err)
	}
	return nil
}

func (r *postgresStageResultRepository) DeleteByStage(ctx context.Context, exec SQLExecutor, tournamentID, stageNumber int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM stage_results WHERE tournament_id = $1 AND stage_number = $2`
	_, err := executor.ExecContext(ctx, query, tournamentID, stageNumber)
	return err
}

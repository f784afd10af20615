package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var (
	ErrResultNotFound    = errors.New("result not found")
	ErrResultLocked      = errors.New("result is locked")
	ErrResultTeamInvalid = errors.New("result team reference invalid")
)

type ResultRepository interface {
	// Upsert creates or replaces the result for (match room, team), unless
	// the existing row is locked, in which case ErrResultLocked is returned.
	Upsert(ctx context.Context, result *models.Result) error
	GetByID(ctx context.Context, id int) (*models.Result, error)
	// LockByMatchRoom flips every row of the match to locked in one batch
	// statement and returns the number of newly locked rows.
	LockByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) (int, error)
	// DeleteUnlocked removes the row only while it is not locked.
	DeleteUnlocked(ctx context.Context, id int) error
	// CountLockedByMatchRoom reports how many results of the match are
	// already locked into the ledger.
	CountLockedByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) (int, error)
	// DeleteUnlockedByMatchRoom removes every still-unlocked result of the
	// match on the given executor.
	DeleteUnlockedByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) error
	// ListByMatchRoom returns results in canonical within-match rank order:
	// points descending, ties broken by kills descending.
	ListByMatchRoom(ctx context.Context, matchRoomID int) ([]*models.Result, error)
	ListLockedByMatchRooms(ctx context.Context, matchRoomIDs []int) ([]*models.Result, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const resultColumns = `id, match_room_id, team_id, position, kills, points, locked, created_at, updated_at`

func (r *postgresResultRepository) scanResult(rowScanner interface {
	Scan(dest ...interface{}) error
}, res *models.Result) error {
	return rowScanner.Scan(
		&res.ID, &res.MatchRoomID, &res.TeamID, &res.Position, &res.Kills,
		&res.Points, &res.Locked, &res.CreatedAt, &res.UpdatedAt,
	)
}

func (r *postgresResultRepository) Upsert(ctx context.Context, result *models.Result) error {
	// Условие locked = FALSE в DO UPDATE превращает попытку перезаписи
	// замороженной строки в "no rows", что и транслируется в ErrResultLocked.
	query := `
		INSERT INTO results (match_room_id, team_id, position, kills, points, locked)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (match_room_id, team_id) DO UPDATE
		SET position = EXCLUDED.position,
		    kills = EXCLUDED.kills,
		    points = EXCLUDED.points,
		    updated_at = NOW()
		WHERE results.locked = FALSE
		RETURNING id, locked, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		result.MatchRoomID, result.TeamID, result.Position, result.Kills, result.Points,
	).Scan(&result.ID, &result.Locked, &result.CreatedAt, &result.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResultLocked
		}
		if isForeignKeyViolation(err, "results_team_id_fkey") {
			return ErrResultTeamInvalid
		}
		return fmt.Errorf("failed to upsert result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) GetByID(ctx context.Context, id int) (*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE id = $1`

	res := &models.Result{}
	err := r.scanResult(r.db.QueryRowContext(ctx, query, id), res)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

func (r *postgresResultRepository) LockByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `UPDATE results SET locked = TRUE, updated_at = NOW() WHERE match_room_id = $1 AND locked = FALSE`
	result, err := executor.ExecContext(ctx, query, matchRoomID)
	if err != nil {
		return 0, fmt.Errorf("failed to lock results for match room %d: %w", matchRoomID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(rowsAffected), nil
}

func (r *postgresResultRepository) DeleteUnlocked(ctx context.Context, id int) error {
	query := `DELETE FROM results WHERE id = $1 AND locked = FALSE`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Either absent or locked; read the row to report the right error.
	var locked bool
	err = r.db.QueryRowContext(ctx, `SELECT locked FROM results WHERE id = $1`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResultNotFound
		}
		return fmt.Errorf("failed to recheck result: %w", err)
	}
	return ErrResultLocked
}

func (r *postgresResultRepository) CountLockedByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COUNT(*) FROM results WHERE match_room_id = $1 AND locked = TRUE`

	var count int
	if err := executor.QueryRowContext(ctx, query, matchRoomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count locked results: %w", err)
	}
	return count, nil
}

func (r *postgresResultRepository) DeleteUnlockedByMatchRoom(ctx context.Context, exec SQLExecutor, matchRoomID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM results WHERE match_room_id = $1 AND locked = FALSE`

	if _, err := executor.ExecContext(ctx, query, matchRoomID); err != nil {
		return fmt.Errorf("failed to delete unlocked results: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) ListByMatchRoom(ctx context.Context, matchRoomID int) ([]*models.Result, error) {
	query := `SELECT ` + resultColumns + `
		FROM results
		WHERE match_room_id = $1
		ORDER BY points DESC, kills DESC, team_id ASC`

	rows, err := r.db.QueryContext(ctx, query, matchRoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	return r.collectResults(rows)
}

func (r *postgresResultRepository) ListLockedByMatchRooms(ctx context.Context, matchRoomIDs []int) ([]*models.Result, error) {
	if len(matchRoomIDs) == 0 {
		return []*models.Result{}, nil
	}
	query := `SELECT ` + resultColumns + `
		FROM results
		WHERE match_room_id = ANY($1) AND locked = TRUE
		ORDER BY match_room_id ASC, team_id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(matchRoomIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list locked results: %w", err)
	}
	defer rows.Close()

	return r.collectResults(rows)
}

func (r *postgresResultRepository) collectResults(rows *sql.Rows) ([]*models.Result, error) {
	results := make([]*models.Result, 0)
	for rows.Next() {
		var res models.Result
		if err := r.scanResult(rows, &res); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

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
	ErrMatchRoomNotFound         = errors.New("match room not found")
	ErrMatchRoomConflict         = errors.New("match room already exists for this tournament, stage and match number")
	ErrMatchRoomAlreadyPublished = errors.New("match room is already published")
)

type MatchRoomRepository interface {
	Create(ctx context.Context, room *models.MatchRoom) error
	GetByID(ctx context.Context, tenantID *int, id int) (*models.MatchRoom, error)
	// ListByIDs resolves the given ids within one tenant and tournament.
	// Ids that do not resolve are simply absent from the returned slice.
	ListByIDs(ctx context.Context, tenantID *int, tournamentID int, ids []int) ([]*models.MatchRoom, error)
	ListByTournament(ctx context.Context, tenantID *int, tournamentID int, stageNumber *int) ([]*models.MatchRoom, error)
	// Publish flips is_published exactly once and stamps published_at.
	Publish(ctx context.Context, tenantID *int, id int) error
	GetCredentials(ctx context.Context, id int) (*models.RoomCredentials, error)
	Delete(ctx context.Context, exec SQLExecutor, tenantID *int, id int) error
}

type postgresMatchRoomRepository struct {
	db *sql.DB
}

func NewPostgresMatchRoomRepository(db *sql.DB) MatchRoomRepository {
	return &postgresMatchRoomRepository{db: db}
}

func (r *postgresMatchRoomRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// room_code и room_password намеренно не входят в выборку по умолчанию:
// учётные данные комнаты читаются только через GetCredentials.
const matchRoomColumns = `
	id, tenant_id, tournament_id, stage_number, match_number, map_name,
	scheduled_at, is_published, published_at, created_at`

func (r *postgresMatchRoomRepository) scanRoom(rowScanner interface {
	Scan(dest ...interface{}) error
}, m *models.MatchRoom) error {
	return rowScanner.Scan(
		&m.ID, &m.TenantID, &m.TournamentID, &m.StageNumber, &m.MatchNumber,
		&m.MapName, &m.ScheduledAt, &m.IsPublished, &m.PublishedAt, &m.CreatedAt,
	)
}

func (r *postgresMatchRoomRepository) Create(ctx context.Context, room *models.MatchRoom) error {
	query := `
		INSERT INTO match_rooms (
			tenant_id, tournament_id, stage_number, match_number, map_name,
			scheduled_at, room_code, room_password, is_published
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		room.TenantID, room.TournamentID, room.StageNumber, room.MatchNumber,
		room.MapName, room.ScheduledAt, room.RoomCode, room.RoomPassword,
	).Scan(&room.ID, &room.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "match_rooms_tournament_id_stage_number_match_number_key") {
			return ErrMatchRoomConflict
		}
		return fmt.Errorf("failed to create match room: %w", err)
	}
	room.IsPublished = false
	return nil
}

func (r *postgresMatchRoomRepository) GetByID(ctx context.Context, tenantID *int, id int) (*models.MatchRoom, error) {
	query := `SELECT` + matchRoomColumns + `
		FROM match_rooms
		WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`

	m := &models.MatchRoom{}
	err := r.scanRoom(r.db.QueryRowContext(ctx, query, id, tenantID), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchRoomNotFound
		}
		return nil, fmt.Errorf("failed to get match room: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRoomRepository) ListByIDs(ctx context.Context, tenantID *int, tournamentID int, ids []int) ([]*models.MatchRoom, error) {
	if len(ids) == 0 {
		return []*models.MatchRoom{}, nil
	}
	query := `SELECT` + matchRoomColumns + `
		FROM match_rooms
		WHERE id = ANY($1) AND tournament_id = $2 AND ($3::int IS NULL OR tenant_id = $3)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), tournamentID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match rooms by ids: %w", err)
	}
	defer rows.Close()

	return r.collectRooms(rows)
}

func (r *postgresMatchRoomRepository) ListByTournament(ctx context.Context, tenantID *int, tournamentID int, stageNumber *int) ([]*models.MatchRoom, error) {
	query := `SELECT` + matchRoomColumns + `
		FROM match_rooms
		WHERE tournament_id = $1
		  AND ($2::int IS NULL OR tenant_id = $2)
		  AND ($3::int IS NULL OR stage_number = $3)
		ORDER BY stage_number ASC, match_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, tenantID, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list match rooms: %w", err)
	}
	defer rows.Close()

	return r.collectRooms(rows)
}

func (r *postgresMatchRoomRepository) collectRooms(rows *sql.Rows) ([]*models.MatchRoom, error) {
	rooms := make([]*models.MatchRoom, 0)
	for rows.Next() {
		var m models.MatchRoom
		if err := r.scanRoom(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match room: %w", err)
		}
		rooms = append(rooms, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *postgresMatchRoomRepository) Publish(ctx context.Context, tenantID *int, id int) error {
	// Одностороннее условное обновление: повторная публикация не
	// перезаписывает published_at.
	query := `
		UPDATE match_rooms
		SET is_published = TRUE, published_at = NOW()
		WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2) AND is_published = FALSE`

	result, err := r.db.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to publish match room: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var published bool
	probe := `SELECT is_published FROM match_rooms WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`
	if err := r.db.QueryRowContext(ctx, probe, id, tenantID).Scan(&published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMatchRoomNotFound
		}
		return fmt.Errorf("failed to probe match room: %w", err)
	}
	return ErrMatchRoomAlreadyPublished
}

func (r *postgresMatchRoomRepository) GetCredentials(ctx context.Context, id int) (*models.RoomCredentials, error) {
	query := `SELECT room_code, room_password FROM match_rooms WHERE id = $1`

	creds := &models.RoomCredentials{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&creds.RoomCode, &creds.RoomPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchRoomNotFound
		}
		return nil, fmt.Errorf("failed to get match room credentials: %w", err)
	}
	return creds, nil
}

func (r *postgresMatchRoomRepository) Delete(ctx context.Context, exec SQLExecutor, tenantID *int, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM match_rooms WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`
	result, err := executor.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("failed to delete match room: %w", err)
	}
	return checkAffectedRows(result, ErrMatchRoomNotFound)
}

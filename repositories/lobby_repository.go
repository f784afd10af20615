package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var (
	ErrLobbyEntryNotFound = errors.New("lobby entry not found")
	ErrLobbyTeamConflict  = errors.New("team already occupies a slot in this tournament")
	ErrLobbySlotTaken     = errors.New("slot number already taken in this tournament")
	ErrLobbyTeamInvalid   = errors.New("lobby team reference invalid")
)

type LobbyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.LobbyEntry) error
	GetByID(ctx context.Context, id int) (*models.LobbyEntry, error)
	FindByTeamAndTournament(ctx context.Context, teamID, tournamentID int) (*models.LobbyEntry, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.LobbyEntry, error)
	UpdateStatus(ctx context.Context, id int, status models.LobbyStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
}

type postgresLobbyRepository struct {
	db *sql.DB
}

func NewPostgresLobbyRepository(db *sql.DB) LobbyRepository {
	return &postgresLobbyRepository{db: db}
}

func (r *postgresLobbyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLobbyRepository) Create(ctx context.Context, exec SQLExecutor, entry *models.LobbyEntry) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO lobby_entries (tournament_id, team_id, slot_number, team_name, captain_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		entry.TournamentID, entry.TeamID, entry.SlotNumber,
		entry.TeamName, entry.CaptainName, entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		// Уникальные индексы — последняя линия обороны против гонок,
		// проскочивших мимо условного инкремента.
		if isUniqueViolation(err, "lobby_entries_tournament_id_team_id_key") {
			return ErrLobbyTeamConflict
		}
		if isUniqueViolation(err, "lobby_entries_tournament_id_slot_number_key") {
			return ErrLobbySlotTaken
		}
		if isForeignKeyViolation(err, "lobby_entries_team_id_fkey") {
			return ErrLobbyTeamInvalid
		}
		return fmt.Errorf("failed to create lobby entry: %w", err)
	}
	return nil
}

func (r *postgresLobbyRepository) scanEntry(rowScanner interface {
	Scan(dest ...interface{}) error
}, e *models.LobbyEntry) error {
	return rowScanner.Scan(
		&e.ID, &e.TournamentID, &e.TeamID, &e.SlotNumber,
		&e.TeamName, &e.CaptainName, &e.Status, &e.CreatedAt,
	)
}

const lobbyColumns = `id, tournament_id, team_id, slot_number, team_name, captain_name, status, created_at`

func (r *postgresLobbyRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.LobbyEntry, error) {
	e := &models.LobbyEntry{}
	err := r.scanEntry(r.db.QueryRowContext(ctx, query, args...), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLobbyEntryNotFound
		}
		return nil, fmt.Errorf("failed to find lobby entry: %w", err)
	}
	return e, nil
}

func (r *postgresLobbyRepository) GetByID(ctx context.Context, id int) (*models.LobbyEntry, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobby_entries WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresLobbyRepository) FindByTeamAndTournament(ctx context.Context, teamID, tournamentID int) (*models.LobbyEntry, error) {
	query := `SELECT ` + lobbyColumns + ` FROM lobby_entries WHERE team_id = $1 AND tournament_id = $2`
	return r.findOne(ctx, query, teamID, tournamentID)
}

func (r *postgresLobbyRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.LobbyEntry, error) {
	query := `SELECT ` + lobbyColumns + `
		FROM lobby_entries
		WHERE tournament_id = $1
		ORDER BY slot_number ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobby entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LobbyEntry, 0)
	for rows.Next() {
		var e models.LobbyEntry
		if scanErr := r.scanEntry(rows, &e); scanErr != nil {
			return nil, fmt.Errorf("failed to scan lobby entry: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresLobbyRepository) UpdateStatus(ctx context.Context, id int, status models.LobbyStatus) error {
	query := `UPDATE lobby_entries SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update lobby entry status: %w", err)
	}
	return checkAffectedRows(result, ErrLobbyEntryNotFound)
}

func (r *postgresLobbyRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM lobby_entries WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete lobby entry: %w", err)
	}
	return checkAffectedRows(result, ErrLobbyEntryNotFound)
}

func (r *postgresLobbyRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lobby_entries WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lobby entries: %w", err)
	}
	return count, nil
}

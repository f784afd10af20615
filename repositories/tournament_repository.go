package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this tenant")
	ErrTournamentNotOpen      = errors.New("tournament is not open for registration")
	ErrTournamentFull         = errors.New("tournament is full")
	ErrTournamentInUse        = errors.New("tournament is in use (lobby entries or match rooms exist)")
)

type ListTournamentsFilter struct {
	TenantID *int
	Status   *models.TournamentStatus
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, tenantID *int, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, t *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
	// FillSlot atomically increments filled_slots and returns the
	// post-increment value, but only while the tournament is still open and
	// below capacity. When the guarded update matches no row the method
	// re-reads the tournament to classify the failure.
	FillSlot(ctx context.Context, exec SQLExecutor, id int) (int, error)
	// ReleaseSlot decrements filled_slots, clamped at zero.
	ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, tenant_id, name, game, description, slots, filled_slots, status,
	prize_pool, entry_fee, entry_terms, start_at, created_at`

func (r *postgresTournamentRepository) scanTournament(rowScanner interface {
	Scan(dest ...interface{}) error
}, t *models.Tournament) error {
	return rowScanner.Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Game, &t.Description, &t.Slots,
		&t.FilledSlots, &t.Status, &t.PrizePool, &t.EntryFee, &t.EntryTerms,
		&t.StartAt, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			tenant_id, name, game, description, slots, filled_slots, status,
			prize_pool, entry_fee, entry_terms, start_at
		) VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.TenantID, t.Name, t.Game, t.Description, t.Slots, t.Status,
		t.PrizePool, t.EntryFee, t.EntryTerms, t.StartAt,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "tournaments_tenant_id_name_key") {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	t.FilledSlots = 0
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, tenantID *int, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`

	t := &models.Tournament{}
	err := r.scanTournament(r.db.QueryRowContext(ctx, query, id, tenantID), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.TenantID != nil {
		query += fmt.Sprintf(" AND tenant_id = $%d", argID)
		args = append(args, *filter.TenantID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY start_at DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := r.scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	// slots может только расти: уменьшение ниже filled_slots нарушило бы
	// инвариант вместимости, это отсекается проверкой в сервисе и здесь.
	query := `
		UPDATE tournaments SET
			name = $1, game = $2, description = $3, slots = $4,
			prize_pool = $5, entry_fee = $6, entry_terms = $7, start_at = $8
		WHERE id = $9 AND slots >= filled_slots`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Game, t.Description, t.Slots,
		t.PrizePool, t.EntryFee, t.EntryTerms, t.StartAt, t.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "tournaments_tenant_id_name_key") {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return ErrTournamentInUse
		}
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// FillSlot is the single atomic primitive behind slot allocation: the
// capacity check and the increment happen in one conditional UPDATE, so two
// concurrent joins can never both observe spare capacity.
func (r *postgresTournamentRepository) FillSlot(ctx context.Context, exec SQLExecutor, id int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET filled_slots = filled_slots + 1
		WHERE id = $1 AND status = $2 AND filled_slots < slots
		RETURNING filled_slots`

	var filled int
	err := executor.QueryRowContext(ctx, query, id, models.StatusUpcoming).Scan(&filled)
	if err == nil {
		return filled, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to fill slot for tournament %d: %w", id, err)
	}

	// Guarded update matched nothing: re-read to tell the caller why.
	var status models.TournamentStatus
	var slots int
	probe := `SELECT status, slots, filled_slots FROM tournaments WHERE id = $1`
	if err := executor.QueryRowContext(ctx, probe, id).Scan(&status, &slots, &filled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to probe tournament %d: %w", id, err)
	}
	if status != models.StatusUpcoming {
		return 0, ErrTournamentNotOpen
	}
	return 0, ErrTournamentFull
}

func (r *postgresTournamentRepository) ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments
		SET filled_slots = GREATEST(filled_slots - 1, 0)
		WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release slot for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var ErrReminderNotFound = errors.New("reminder not found")

type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	// ListDue returns at most limit pending reminders whose remind_at has
	// passed, oldest first, keeping each scheduler tick bounded.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error)
	MarkStatus(ctx context.Context, id int, status models.ReminderStatus) error
	ListByTenant(ctx context.Context, tenantID int) ([]*models.Reminder, error)
}

type postgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) ReminderRepository {
	return &postgresReminderRepository{db: db}
}

const reminderColumns = `id, tenant_id, tournament_id, match_room_id, recipient, subject, message, remind_at, status, created_at`

func (r *postgresReminderRepository) scanReminder(rowScanner interface {
	Scan(dest ...interface{}) error
}, rem *models.Reminder) error {
	return rowScanner.Scan(
		&rem.ID, &rem.TenantID, &rem.TournamentID, &rem.MatchRoomID,
		&rem.Recipient, &rem.Subject, &rem.Message, &rem.RemindAt,
		&rem.Status, &rem.CreatedAt,
	)
}

func (r *postgresReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (tenant_id, tournament_id, match_room_id, recipient, subject, message, remind_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reminder.TenantID, reminder.TournamentID, reminder.MatchRoomID,
		reminder.Recipient, reminder.Subject, reminder.Message,
		reminder.RemindAt, reminder.Status,
	).Scan(&reminder.ID, &reminder.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *postgresReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE status = $1 AND remind_at <= $2
		ORDER BY remind_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, models.ReminderPending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	return r.collectReminders(rows)
}

func (r *postgresReminderRepository) MarkStatus(ctx context.Context, id int, status models.ReminderStatus) error {
	query := `UPDATE reminders SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %d as %s: %w", id, status, err)
	}
	return checkAffectedRows(result, ErrReminderNotFound)
}

func (r *postgresReminderRepository) ListByTenant(ctx context.Context, tenantID int) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + `
		FROM reminders
		WHERE tenant_id = $1
		ORDER BY remind_at ASC`

	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	return r.collectReminders(rows)
}

func (r *postgresReminderRepository) collectReminders(rows *sql.Rows) ([]*models.Reminder, error) {
	reminders := make([]*models.Reminder, 0)
	for rows.Next() {
		var rem models.Reminder
		if err := r.scanReminder(rows, &rem); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

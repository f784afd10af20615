package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var (
	ErrPaymentProofNotFound = errors.New("payment proof not found")
	ErrPaymentProofReviewed = errors.New("payment proof already reviewed")
)

type PaymentProofRepository interface {
	Create(ctx context.Context, proof *models.PaymentProof) error
	GetByID(ctx context.Context, tenantID *int, id int) (*models.PaymentProof, error)
	ListByTenant(ctx context.Context, tenantID int, status *models.PaymentProofStatus) ([]*models.PaymentProof, error)
	// TransitionStatus moves a pending proof to approved/rejected exactly
	// once; a second review attempt gets ErrPaymentProofReviewed.
	TransitionStatus(ctx context.Context, tenantID *int, id int, status models.PaymentProofStatus) error
}

type postgresPaymentProofRepository struct {
	db *sql.DB
}

func NewPostgresPaymentProofRepository(db *sql.DB) PaymentProofRepository {
	return &postgresPaymentProofRepository{db: db}
}

const proofColumns = `id, tenant_id, tournament_id, team_id, amount, screenshot_key, status, created_at, reviewed_at`

func (r *postgresPaymentProofRepository) scanProof(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.PaymentProof) error {
	return rowScanner.Scan(
		&p.ID, &p.TenantID, &p.TournamentID, &p.TeamID, &p.Amount,
		&p.ScreenshotKey, &p.Status, &p.CreatedAt, &p.ReviewedAt,
	)
}

func (r *postgresPaymentProofRepository) Create(ctx context.Context, proof *models.PaymentProof) error {
	query := `
		INSERT INTO payment_proofs (tenant_id, tournament_id, team_id, amount, screenshot_key, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		proof.TenantID, proof.TournamentID, proof.TeamID, proof.Amount,
		proof.ScreenshotKey, proof.Status,
	).Scan(&proof.ID, &proof.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment proof: %w", err)
	}
	return nil
}

func (r *postgresPaymentProofRepository) GetByID(ctx context.Context, tenantID *int, id int) (*models.PaymentProof, error) {
	query := `SELECT ` + proofColumns + `
		FROM payment_proofs
		WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`

	p := &models.PaymentProof{}
	err := r.scanProof(r.db.QueryRowContext(ctx, query, id, tenantID), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentProofNotFound
		}
		return nil, fmt.Errorf("failed to get payment proof: %w", err)
	}
	return p, nil
}

func (r *postgresPaymentProofRepository) ListByTenant(ctx context.Context, tenantID int, status *models.PaymentProofStatus) ([]*models.PaymentProof, error) {
	query := `SELECT ` + proofColumns + `
		FROM payment_proofs
		WHERE tenant_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, tenantID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment proofs: %w", err)
	}
	defer rows.Close()

	proofs := make([]*models.PaymentProof, 0)
	for rows.Next() {
		var p models.PaymentProof
		if scanErr := r.scanProof(rows, &p); scanErr != nil {
			return nil, fmt.Errorf("failed to scan payment proof: %w", scanErr)
		}
		proofs = append(proofs, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return proofs, nil
}

func (r *postgresPaymentProofRepository) TransitionStatus(ctx context.Context, tenantID *int, id int, status models.PaymentProofStatus) error {
	query := `
		UPDATE payment_proofs
		SET status = $1, reviewed_at = NOW()
		WHERE id = $2 AND ($3::int IS NULL OR tenant_id = $3) AND status = $4`

	result, err := r.db.ExecContext(ctx, query, status, id, tenantID, models.ProofPending)
	if err != nil {
		return fmt.Errorf("failed to transition payment proof status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var current models.PaymentProofStatus
	probe := `SELECT status FROM payment_proofs WHERE id = $1 AND ($2::int IS NULL OR tenant_id = $2)`
	if err := r.db.QueryRowContext(ctx, probe, id, tenantID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentProofNotFound
		}
		return fmt.Errorf("failed to probe payment proof: %w", err)
	}
	return ErrPaymentProofReviewed
}

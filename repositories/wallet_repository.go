package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

var (
	ErrWalletNotFound            = errors.New("wallet not found")
	ErrWalletTransactionNotFound = errors.New("wallet transaction not found")
)

type WalletRepository interface {
	// GetForUpdate reads the wallet row with a row lock, pinning the balance
	// for the remainder of the surrounding transaction.
	GetForUpdate(ctx context.Context, exec SQLExecutor, tenantID int) (*models.Wallet, error)
	// Create provisions a zero-balance wallet if missing and returns the
	// row locked for update; concurrent callers settle on the same row.
	Create(ctx context.Context, exec SQLExecutor, tenantID int) (*models.Wallet, error)
	GetByTenant(ctx context.Context, tenantID int) (*models.Wallet, error)
	// ApplyDelta sets the new balance and appends the journal entry on the
	// same executor; callers must run both inside one transaction.
	ApplyDelta(ctx context.Context, exec SQLExecutor, walletID int, newBalance decimal.Decimal, txn *models.WalletTransaction) error
	ListTransactions(ctx context.Context, tenantID int, limit, offset int) ([]*models.WalletTransaction, error)
}

type postgresWalletRepository struct {
	db *sql.DB
}

func NewPostgresWalletRepository(db *sql.DB) WalletRepository {
	return &postgresWalletRepository{db: db}
}

func (r *postgresWalletRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresWalletRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, tenantID int) (*models.Wallet, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tenant_id, balance, created_at, updated_at
		FROM wallets
		WHERE tenant_id = $1
		FOR UPDATE`

	w := &models.Wallet{}
	err := executor.QueryRowContext(ctx, query, tenantID).Scan(
		&w.ID, &w.TenantID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for update: %w", err)
	}
	return w, nil
}

func (r *postgresWalletRepository) Create(ctx context.Context, exec SQLExecutor, tenantID int) (*models.Wallet, error) {
	executor := r.getExecutor(exec)
	// Две транзакции могут одновременно заводить кошелёк одного тенанта:
	// DO NOTHING гасит конфликт уникальности, после чего обе блокируются
	// на одной и той же строке.
	query := `
		INSERT INTO wallets (tenant_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (tenant_id) DO NOTHING`

	if _, err := executor.ExecContext(ctx, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to create wallet for tenant %d: %w", tenantID, err)
	}
	return r.GetForUpdate(ctx, executor, tenantID)
}

func (r *postgresWalletRepository) GetByTenant(ctx context.Context, tenantID int) (*models.Wallet, error) {
	query := `SELECT id, tenant_id, balance, created_at, updated_at FROM wallets WHERE tenant_id = $1`

	w := &models.Wallet{}
	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&w.ID, &w.TenantID, &w.Balance, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

func (r *postgresWalletRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, walletID int, newBalance decimal.Decimal, txn *models.WalletTransaction) error {
	executor := r.getExecutor(exec)

	result, err := executor.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if err := checkAffectedRows(result, ErrWalletNotFound); err != nil {
		return err
	}

	query := `
		INSERT INTO wallet_transactions (wallet_id, tenant_id, type, amount, status, note, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		txn.WalletID, txn.TenantID, txn.Type, txn.Amount, txn.Status, txn.Note, txn.ReferenceID,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}

func (r *postgresWalletRepository) ListTransactions(ctx context.Context, tenantID int, limit, offset int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, tenant_id, type, amount, status, note, reference_id, created_at
		FROM wallet_transactions
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC`

	args := []interface{}{tenantID}
	argID := 2
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, limit)
		argID++
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	defer rows.Close()

	txns := make([]*models.WalletTransaction, 0)
	for rows.Next() {
		var t models.WalletTransaction
		if scanErr := rows.Scan(
			&t.ID, &t.WalletID, &t.TenantID, &t.Type, &t.Amount,
			&t.Status, &t.Note, &t.ReferenceID, &t.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", scanErr)
		}
		txns = append(txns, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return txns, nil
}

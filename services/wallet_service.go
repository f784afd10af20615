package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// WalletService ведёт балансы тенантов. Любое изменение баланса идёт в паре
// с неизменяемой записью журнала внутри одной транзакции, поэтому баланс
// всегда равен сумме завершённых дельт.
type WalletService struct {
	txr     repositories.TxRunner
	wallets repositories.WalletRepository
}

func NewWalletService(txr repositories.TxRunner, wallets repositories.WalletRepository) *WalletService {
	return &WalletService{txr: txr, wallets: wallets}
}

// Credit increases the tenant balance. The wallet is lazily created with a
// zero balance on first credit.
func (s *WalletService) Credit(ctx context.Context, tenantID int, amount decimal.Decimal, txnType models.TxnType, note string, referenceID *int) (*models.WalletTransaction, error) {
	if amount.Sign() <= 0 {
		return nil, ErrAmountInvalid
	}
	if !txnType.IsCredit() {
		return nil, ErrValidationFailed
	}

	txn := &models.WalletTransaction{
		TenantID:    tenantID,
		Type:        txnType,
		Amount:      amount,
		Status:      models.TxnCompleted,
		ReferenceID: referenceID,
	}
	if note != "" {
		txn.Note = &note
	}

	err := s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		wallet, err := s.wallets.GetForUpdate(ctx, exec, tenantID)
		if errors.Is(err, repositories.ErrWalletNotFound) {
			wallet, err = s.wallets.Create(ctx, exec, tenantID)
		}
		if err != nil {
			return err
		}
		txn.WalletID = wallet.ID
		return s.wallets.ApplyDelta(ctx, exec, wallet.ID, wallet.Balance.Add(amount), txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Debit decreases the tenant balance, rejecting underfunded wallets. The
// balance is pinned with a row lock for the whole transaction, so a
// concurrent debit cannot overdraw.
func (s *WalletService) Debit(ctx context.Context, tenantID int, amount decimal.Decimal, txnType models.TxnType, note string, referenceID *int) (*models.WalletTransaction, error) {
	if amount.Sign() <= 0 {
		return nil, ErrAmountInvalid
	}
	if txnType.IsCredit() {
		return nil, ErrValidationFailed
	}

	txn := &models.WalletTransaction{
		TenantID:    tenantID,
		Type:        txnType,
		Amount:      amount,
		Status:      models.TxnCompleted,
		ReferenceID: referenceID,
	}
	if note != "" {
		txn.Note = &note
	}

	err := s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		wallet, err := s.wallets.GetForUpdate(ctx, exec, tenantID)
		if err != nil {
			if errors.Is(err, repositories.ErrWalletNotFound) {
				return ErrInsufficientFunds
			}
			return err
		}
		if wallet.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		txn.WalletID = wallet.ID
		return s.wallets.ApplyDelta(ctx, exec, wallet.ID, wallet.Balance.Sub(amount), txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Balance returns the tenant wallet; tenants without wallet activity read
// as a zero balance rather than an error.
func (s *WalletService) Balance(ctx context.Context, tenantID int) (*models.Wallet, error) {
	wallet, err := s.wallets.GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return &models.Wallet{TenantID: tenantID, Balance: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return wallet, nil
}

// Transactions returns the journal of the tenant, newest first.
func (s *WalletService) Transactions(ctx context.Context, tenantID, limit, offset int) ([]*models.WalletTransaction, error) {
	return s.wallets.ListTransactions(ctx, tenantID, limit, offset)
}

// ApproveWithdrawal debits the tenant wallet for an approved withdrawal
// request, referencing the request id in the journal entry.
func (s *WalletService) ApproveWithdrawal(ctx context.Context, tenantID int, amount decimal.Decimal, withdrawalID int, actor models.Actor) (*models.WalletTransaction, error) {
	if !actor.Can(models.CapManageWallet) || !actor.OwnsTenant(tenantID) {
		return nil, ErrForbiddenOperation
	}
	return s.Debit(ctx, tenantID, amount, models.TxnWithdrawal, "withdrawal approved", &withdrawalID)
}

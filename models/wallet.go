package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnType классифицирует движение средств по кошельку тенанта.
type TxnType string

const (
	TxnEntryFeeCredit   TxnType = "entry_fee_credit"
	TxnAdjustmentCredit TxnType = "adjustment_credit"
	TxnPrizePayout      TxnType = "prize_payout"
	TxnWithdrawal       TxnType = "withdrawal"
)

// IsCredit reports whether the type increases the balance.
func (t TxnType) IsCredit() bool {
	return t == TxnEntryFeeCredit || t == TxnAdjustmentCredit
}

// TxnStatus — статус записи журнала транзакций.
type TxnStatus string

const (
	TxnCompleted TxnStatus = "completed"
	TxnFailed    TxnStatus = "failed"
)

// Wallet holds the cached balance of one tenant. The balance is only ever
// mutated together with an appended WalletTransaction, inside one database
// transaction, so it always equals the sum of completed deltas.
type Wallet struct {
	ID        int             `json:"id" db:"id"`
	TenantID  int             `json:"tenant_id" db:"tenant_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// WalletTransaction is an immutable journal entry. ReferenceID optionally
// points at the entity that triggered the movement (payment proof,
// tournament, withdrawal request).
type WalletTransaction struct {
	ID          int             `json:"id" db:"id"`
	WalletID    int             `json:"wallet_id" db:"wallet_id"`
	TenantID    int             `json:"tenant_id" db:"tenant_id"`
	Type        TxnType         `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Status      TxnStatus       `json:"status" db:"status"`
	Note        *string         `json:"note,omitempty" db:"note"`
	ReferenceID *int            `json:"reference_id,omitempty" db:"reference_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

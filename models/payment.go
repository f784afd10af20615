package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProofStatus — статус заявки с чеком об оплате.
type PaymentProofStatus string

const (
	ProofPending  PaymentProofStatus = "pending"
	ProofApproved PaymentProofStatus = "approved"
	ProofRejected PaymentProofStatus = "rejected"
)

// PaymentProof is bookkeeping for an entry-fee payment made outside the
// system: a team uploads a screenshot, the tenant admin approves or
// rejects it. Approval credits the tenant wallet.
type PaymentProof struct {
	ID            int                `json:"id" db:"id"`
	TenantID      int                `json:"tenant_id" db:"tenant_id"`
	TournamentID  int                `json:"tournament_id" db:"tournament_id"`
	TeamID        int                `json:"team_id" db:"team_id"`
	Amount        decimal.Decimal    `json:"amount" db:"amount"`
	ScreenshotKey *string            `json:"-" db:"screenshot_key"`
	ScreenshotURL *string            `json:"screenshot_url,omitempty" db:"-"`
	Status        PaymentProofStatus `json:"status" db:"status"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming TournamentStatus = "upcoming"
	StatusOngoing  TournamentStatus = "ongoing"
	StatusPast     TournamentStatus = "past"
)

// Tournament представляет турнир. Каждый турнир принадлежит одному
// тенанту (организующему админу); slots/filled_slots обслуживаются
// исключительно через условные обновления в репозитории.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	TenantID    int              `json:"tenant_id" db:"tenant_id"`
	Name        string           `json:"name" db:"name"`
	Game        string           `json:"game" db:"game"`
	Description *string          `json:"description,omitempty" db:"description"`
	Slots       int              `json:"slots" db:"slots"`
	FilledSlots int              `json:"filled_slots" db:"filled_slots"`
	Status      TournamentStatus `json:"status" db:"status"`
	PrizePool   decimal.Decimal  `json:"prize_pool" db:"prize_pool"`
	EntryFee    decimal.Decimal  `json:"entry_fee" db:"entry_fee"`
	EntryTerms  *string          `json:"entry_terms,omitempty" db:"entry_terms"`
	StartAt     time.Time        `json:"start_at" db:"start_at"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

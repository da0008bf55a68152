package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/megaprint/megaprint/internal/overage"
)

type State string

const (
	StatePending             State = "pending"
	StatePendingVerification State = "pending_verification"
	StatePaid                State = "paid"
	StateRejected            State = "rejected"
)

type Kind string

const (
	KindDailyOverage  Kind = "daily_overage"
	KindWeeklyOverage Kind = "weekly_overage"
)

// DebtEntry is one charge owed by a seller. Entries are never merged:
// each confirmed batch that exceeds a limit produces its own entry so the
// ledger stays traceable to the batch that caused it.
type DebtEntry struct {
	ID                 snowflake.ID `gorm:"primaryKey" json:"id"`
	SellerID           snowflake.ID `gorm:"not null;index" json:"seller_id"`
	Kind               Kind         `gorm:"not null" json:"kind"`
	State              State        `gorm:"not null;default:pending;index" json:"state"`
	AmountCents        int64        `gorm:"not null" json:"amount_cents"`
	ExcessUnits        int64        `gorm:"not null;default:0" json:"excess_units"`
	PeriodKey          string       `json:"period_key,omitempty"`
	PaymentMethod      string       `json:"payment_method,omitempty"`
	ReferenceCode      string       `json:"reference_code,omitempty"`
	ProofAttachmentRef string       `json:"proof_attachment_ref,omitempty"`
	ResolvedAt         *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Open reports whether the entry still counts toward what the seller owes.
func (e DebtEntry) Open() bool {
	return e.State == StatePending || e.State == StatePendingVerification
}

// NewOverageEntry builds the ledger entry for a priced batch. Batches that
// stayed within both limits produce no entry.
func NewOverageEntry(id, sellerID snowflake.ID, charge overage.Charge, periodKey string, now time.Time) *DebtEntry {
	if charge.AmountCents <= 0 {
		return nil
	}

	kind := KindWeeklyOverage
	if charge.ExcessDaily > 0 {
		kind = KindDailyOverage
	}

	return &DebtEntry{
		ID:          id,
		SellerID:    sellerID,
		Kind:        kind,
		State:       StatePending,
		AmountCents: charge.AmountCents,
		ExcessUnits: charge.ExcessUnits(),
		PeriodKey:   periodKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

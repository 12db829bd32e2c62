package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proposal is a billing engagement for a client. Fee amounts are UF, an
// inflation-indexed unit of account converted to pesos only at display time.
type Proposal struct {
	ID          int64
	ClientID    int64
	Title       string
	Description *string
	BillingMode BillingMode
	TotalFeeUF  *decimal.Decimal
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Milestone is a billable trigger point within a proposal. A step may link to
// it; completing that step fires the milestone once.
type Milestone struct {
	ID          int64
	ProposalID  int64
	Title       string
	FeeUF       *decimal.Decimal
	DueDate     *time.Time
	IsTriggered bool
	TriggeredAt *time.Time
	Note        *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Trigger marks the milestone as triggered at the given time. Once triggered,
// further calls keep the original TriggeredAt.
func (m *Milestone) Trigger(at time.Time) {
	if m.IsTriggered {
		return
	}
	m.IsTriggered = true
	m.TriggeredAt = &at
}

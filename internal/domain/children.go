package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an out-of-pocket cost attached to a procedure.
type Expense struct {
	ID             int64
	ProcedureID    int64
	Reason         string
	DocumentType   DocumentType
	DocumentNumber *string
	AmountUF       decimal.Decimal
	Organism       *string
	PaidAt         *time.Time
	BilledAt       *time.Time
	CreatedAt      time.Time
}

type Todo struct {
	ID          int64
	ProcedureID int64
	Text        string
	Done        bool
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WaterRight is a registered right tracked under a procedure, identified by
// its CBR inscription (foja/número/año).
type WaterRight struct {
	ID          int64
	ProcedureID int64
	Naturaleza  Naturaleza
	Foja        string
	Numero      string
	Anio        int
	CBR         string
	CreatedAt   time.Time
}

// Complete reports whether the water right carries every inscription field.
// Incomplete entries are dropped at creation time rather than rejected.
func (w *WaterRight) Complete() bool {
	return w.Foja != "" && w.Numero != "" && w.Anio != 0 && w.CBR != ""
}

// UFRate is a UF→CLP exchange rate effective on a given date.
type UFRate struct {
	ID    int64
	Date  time.Time // date component only, UTC
	Value decimal.Decimal
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StudentBonus is a discretionary balance credit. Always INCOME in the
// balance report.
type StudentBonus struct {
	ID            int64           `json:"id"`
	StudentID     int64           `json:"student_id"`
	Amount        decimal.Decimal `json:"amount"`
	Comment       string          `json:"comment,omitempty"`
	MarkForDelete bool            `json:"mark_for_delete"`
	IsDeleted     bool            `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BalanceAdjustment records an operator overriding a student's balance. The
// report shows the absolute difference with direction derived from which
// value is larger.
type BalanceAdjustment struct {
	ID            int64           `json:"id"`
	StudentID     int64           `json:"student_id"`
	OldBalance    decimal.Decimal `json:"old_balance"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Comment       string          `json:"comment,omitempty"`
	MarkForDelete bool            `json:"mark_for_delete"`
	IsDeleted     bool            `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Diff returns NewBalance minus OldBalance.
func (a *BalanceAdjustment) Diff() decimal.Decimal {
	return a.NewBalance.Sub(a.OldBalance)
}

// ChangeType is INCOME when the adjustment raised the balance, OUTCOME
// otherwise. An adjustment to the same value counts as INCOME.
func (a *BalanceAdjustment) ChangeType() BalanceChangeType {
	if a.NewBalance.GreaterThanOrEqual(a.OldBalance) {
		return ChangeIncome
	}
	return ChangeOutcome
}

// StudyCharge is a monthly lesson fee generated from group enrollment. It is
// never editable from the ledger; removing the student from the group is the
// only way to eliminate it.
type StudyCharge struct {
	ID         int64           `json:"id"`
	StudentID  int64           `json:"student_id"`
	GroupID    int64           `json:"group_id"`
	Amount     decimal.Decimal `json:"amount"`
	ChargeDate time.Time       `json:"charge_date"`
	CreatedAt  time.Time       `json:"created_at"`
}

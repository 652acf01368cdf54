package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reason identifies which backing table a balance report row came from and
// which mutation set applies to it.
type Reason string

const (
	ReasonPayment    Reason = "PAYMENT"
	ReasonBonus      Reason = "BONUS"
	ReasonAdjustment Reason = "ADJUSTMENT"
	ReasonStudy      Reason = "STUDY"
)

// Valid reports whether r is one of the four known reasons.
func (r Reason) Valid() bool {
	switch r {
	case ReasonPayment, ReasonBonus, ReasonAdjustment, ReasonStudy:
		return true
	}
	return false
}

// BalanceChangeType is the direction of a balance report row.
type BalanceChangeType string

const (
	ChangeIncome  BalanceChangeType = "INCOME"
	ChangeOutcome BalanceChangeType = "OUTCOME"
)

// ReportEntry is one row of a student's balance report. IDs are unique only
// within the row's reason-specific backing table, not across reasons.
type ReportEntry struct {
	ID                int64             `json:"id"`
	Date              time.Time         `json:"date"`
	Reason            Reason            `json:"reason"`
	BalanceChangeType BalanceChangeType `json:"balance_change_type"`
	Total             decimal.Decimal   `json:"total"`
	BalanceBefore     decimal.Decimal   `json:"balance_before"`
	BalanceAfter      decimal.Decimal   `json:"balance_after"`
	MarkForDelete     bool              `json:"mark_for_delete"`
	CommentText       string            `json:"comment_text"`
}

// SignedTotal returns the entry's amount with its direction applied.
func (e *ReportEntry) SignedTotal() decimal.Decimal {
	if e.BalanceChangeType == ChangeIncome {
		return e.Total
	}
	return e.Total.Neg()
}

// ComputeRunningBalance fills BalanceBefore and BalanceAfter for each entry,
// starting from zero. Entries must already be ordered by date.
func ComputeRunningBalance(entries []ReportEntry) {
	balance := decimal.Zero
	for i := range entries {
		entries[i].BalanceBefore = balance
		balance = balance.Add(entries[i].SignedTotal())
		entries[i].BalanceAfter = balance
	}
}

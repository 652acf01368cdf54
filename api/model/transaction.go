package model

import "github.com/shopspring/decimal"

type RecordPayment struct {
	Reference     string          `json:"reference"`
	StudentID     int64           `json:"student_id"`
	PaymentType   string          `json:"payment_type"`
	PaymentMethod string          `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	Comment       string          `json:"comment"`
}

type RecordBonus struct {
	StudentID int64           `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Comment   string          `json:"comment"`
}

type RecordAdjustment struct {
	StudentID  int64           `json:"student_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Comment    string          `json:"comment"`
}

// CorrectTransaction is the shared body of the flag/comment mutations on
// payments, bonuses and adjustments. Absent fields keep their stored value.
type CorrectTransaction struct {
	ID            int64   `json:"id"`
	MarkForDelete *bool   `json:"mark_for_delete"`
	Comment       *string `json:"comment"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentIncome  PaymentType = "INCOME"
	PaymentOutcome PaymentType = "OUTCOME"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodHumo     PaymentMethod = "HUMO"
	MethodUzcard   PaymentMethod = "UZCARD"
	MethodClick    PaymentMethod = "CLICK"
	MethodPayme    PaymentMethod = "PAYME"
	MethodUzum     PaymentMethod = "UZUM"
)

// PaymentMethods lists every accepted payment method. Each has its own cash
// drawer row.
var PaymentMethods = []PaymentMethod{
	MethodCash, MethodCard, MethodTransfer, MethodHumo,
	MethodUzcard, MethodClick, MethodPayme, MethodUzum,
}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

type Payment struct {
	ID                  int64           `json:"id"`
	Reference           string          `json:"reference"`
	StudentID           int64           `json:"student_id"`
	PaymentType         PaymentType     `json:"payment_type"`
	PaymentMethod       PaymentMethod   `json:"payment_method"`
	Amount              decimal.Decimal `json:"amount"`
	StudentBalanceAfter decimal.Decimal `json:"student_balance_after"`
	PaymentDate         time.Time       `json:"payment_date"`
	Comment             string          `json:"comment,omitempty"`
	MarkForDelete       bool            `json:"mark_for_delete"`
	IsDeleted           bool            `json:"-"`
	CreatedAt           time.Time       `json:"created_at"`
}

// BalanceEffect is the signed amount the payment applied to the student's
// balance and the drawer. Deleting the payment subtracts the same value.
func (p *Payment) BalanceEffect() decimal.Decimal {
	if p.PaymentType == PaymentIncome {
		return p.Amount
	}
	return p.Amount.Neg()
}

// CashDrawer tracks the accumulated amount per payment method.
type CashDrawer struct {
	ID            int64           `json:"id"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Amount        decimal.Decimal `json:"amount"`
}

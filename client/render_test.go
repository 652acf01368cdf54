package client

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/model"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234567", "1 234 567"},
		{"", ""},
		{"0", "0"},
		{"100", "100"},
		{"1000", "1 000"},
		{"1234.90", "1 234"},
		{"-1234567", "-1 234 567"},
		{"not-a-number", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatAmount(tt.input), "input %q", tt.input)
	}
}

func TestRenderRowSign(t *testing.T) {
	income := RenderRow(entry(1, model.ReasonPayment, model.ChangeIncome, "500000", false))
	assert.Equal(t, "+", income.Sign)

	outcome := RenderRow(entry(2, model.ReasonStudy, model.ChangeOutcome, "300000", false))
	assert.Equal(t, "-", outcome.Sign)
}

func TestRenderRowLabels(t *testing.T) {
	tests := []struct {
		reason model.Reason
		label  string
	}{
		{model.ReasonPayment, "Оплата"},
		{model.ReasonStudy, "Учеба"},
		{model.ReasonBonus, "Льгота"},
		{model.ReasonAdjustment, "Изменение"},
		{model.Reason("REFUND"), "REFUND"},
	}

	for _, tt := range tests {
		row := RenderRow(model.ReportEntry{Reason: tt.reason})
		assert.Equal(t, tt.label, row.Label)
	}
}

func TestRenderRowFormatsFields(t *testing.T) {
	e := model.ReportEntry{
		ID:                7,
		Date:              time.Date(2024, time.March, 10, 18, 45, 0, 0, time.UTC),
		Reason:            model.ReasonPayment,
		BalanceChangeType: model.ChangeIncome,
		Total:             decimal.RequireFromString("1500000"),
		BalanceBefore:     decimal.RequireFromString("250000"),
		BalanceAfter:      decimal.RequireFromString("1750000"),
		MarkForDelete:     true,
		CommentText:       "двойная оплата",
	}

	row := RenderRow(e)
	assert.Equal(t, "2024-03-10", row.Date)
	assert.Equal(t, "1 500 000", row.Total)
	assert.Equal(t, "250 000", row.BalanceBefore)
	assert.Equal(t, "1 750 000", row.BalanceAfter)
	assert.True(t, row.Flagged)
	assert.Equal(t, "двойная оплата", row.Comment)
}

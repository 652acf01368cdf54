/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/polica/daftar/model"
)

// reasonLabels are the operator-facing names of the four reasons. Unknown
// reasons fall back to the literal code.
var reasonLabels = map[model.Reason]string{
	model.ReasonPayment:    "Оплата",
	model.ReasonStudy:      "Учеба",
	model.ReasonBonus:      "Льгота",
	model.ReasonAdjustment: "Изменение",
}

// Row is a fully rendered ledger line, ready for display.
type Row struct {
	ID            int64
	Date          string
	Label         string
	Sign          string
	Total         string
	BalanceBefore string
	BalanceAfter  string
	Flagged       bool
	Comment       string
	Reason        model.Reason
}

// RenderRow maps a report entry to its display form. Pure; no amounts are
// computed here, only formatted.
func RenderRow(entry model.ReportEntry) Row {
	sign := "-"
	if entry.BalanceChangeType == model.ChangeIncome {
		sign = "+"
	}

	label, ok := reasonLabels[entry.Reason]
	if !ok {
		label = string(entry.Reason)
	}

	return Row{
		ID:            entry.ID,
		Date:          entry.Date.Format("2006-01-02"),
		Label:         label,
		Sign:          sign,
		Total:         FormatAmount(entry.Total.String()),
		BalanceBefore: FormatAmount(entry.BalanceBefore.String()),
		BalanceAfter:  FormatAmount(entry.BalanceAfter.String()),
		Flagged:       entry.MarkForDelete,
		Comment:       entry.CommentText,
		Reason:        entry.Reason,
	}
}

// FormatAmount renders a decimal amount with a space every three digits,
// discarding any fractional part. The currency is zero-decimal, so flooring
// loses nothing meaningful. Empty or unparseable input renders as an empty
// string; the formatter never fails.
func FormatAmount(value string) string {
	if value == "" {
		return ""
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return ""
	}

	digits := d.Floor().String()
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := strings.Join(groups, " ")
	if negative {
		return "-" + formatted
	}
	return formatted
}

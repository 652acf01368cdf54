package daftar

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/model"
)

func expectStudentRow(mock sqlmock.Sqlmock, id int64, balance string) {
	rows := sqlmock.NewRows([]string{"id", "full_name", "phone_number", "parent_phone_number", "birthday_date", "gender", "comment", "balance", "department", "account_number", "mark_for_delete", "created_at"}).
		AddRow(id, "Азиз Каримов", "998901234567", nil, nil, "MALE", nil, balance, "SCHOOL", 1000001, false, time.Now())
	mock.ExpectQuery("SELECT id, full_name, phone_number").
		WithArgs(id).
		WillReturnRows(rows)
}

func TestBalanceReport(t *testing.T) {
	d, mock := newTestDaftar(t)

	base := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)

	expectStudentRow(mock, 42, "250000")
	reportRows := sqlmock.NewRows([]string{"id", "date", "reason", "balance_change_type", "total", "mark_for_delete", "comment_text"}).
		AddRow(1, base, "PAYMENT", "INCOME", "500000", false, "").
		AddRow(2, base.AddDate(0, 0, 3), "STUDY", "OUTCOME", "300000", false, "").
		AddRow(3, base.AddDate(0, 0, 5), "BONUS", "INCOME", "50000", false, "")
	mock.ExpectQuery("SELECT id, date, reason, balance_change_type").
		WithArgs(int64(42)).
		WillReturnRows(reportRows)

	entries, err := d.BalanceReport(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.True(t, entries[0].BalanceBefore.IsZero())
	assert.Equal(t, "500000", entries[0].BalanceAfter.String())
	assert.Equal(t, "200000", entries[1].BalanceAfter.String())
	assert.Equal(t, "250000", entries[2].BalanceAfter.String())

	// Second call is served from the cache; no further queries expected.
	cachedEntries, err := d.BalanceReport(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, cachedEntries, 3)
	assert.Equal(t, "250000", cachedEntries[2].BalanceAfter.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceReport_UnknownStudent(t *testing.T) {
	d, mock := newTestDaftar(t)

	mock.ExpectQuery("SELECT id, full_name, phone_number").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := d.BalanceReport(context.Background(), 99)
	assert.Error(t, err)
}

func TestFlagPaymentInvalidatesReport(t *testing.T) {
	d, mock := newTestDaftar(t)

	base := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)

	expectStudentRow(mock, 42, "500000")
	mock.ExpectQuery("SELECT id, date, reason, balance_change_type").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "reason", "balance_change_type", "total", "mark_for_delete", "comment_text"}).
			AddRow(15, base, "PAYMENT", "INCOME", "500000", false, ""))

	_, err := d.BalanceReport(context.Background(), 42)
	assert.NoError(t, err)

	mock.ExpectExec("UPDATE daftar.payments").
		WithArgs(int64(15), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, reference, student_id").
		WithArgs(int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "student_id", "payment_type", "payment_method", "amount", "student_balance_after", "payment_date", "comment", "mark_for_delete", "created_at"}).
			AddRow(15, "pay_ref", 42, "INCOME", "CASH", "500000", "500000", base, "дубликат", true, base))

	updated, err := d.FlagPayment(context.Background(), 15, true, "дубликат")
	assert.NoError(t, err)
	assert.True(t, updated.MarkForDelete)

	// Cache was invalidated, so the next report hits the database again and
	// reflects the new flag.
	expectStudentRow(mock, 42, "500000")
	mock.ExpectQuery("SELECT id, date, reason, balance_change_type").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "reason", "balance_change_type", "total", "mark_for_delete", "comment_text"}).
			AddRow(15, base, "PAYMENT", "INCOME", "500000", true, "дубликат"))

	entries, err := d.BalanceReport(context.Background(), 42)
	assert.NoError(t, err)
	assert.True(t, entries[0].MarkForDelete)
	assert.Equal(t, model.ReasonPayment, entries[0].Reason)

	assert.NoError(t, mock.ExpectationsWereMet())
}

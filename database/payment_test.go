package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func TestRecordPayment_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	payment := &model.Payment{
		Reference:     "pay_ref_1",
		StudentID:     42,
		PaymentType:   model.PaymentIncome,
		PaymentMethod: model.MethodCash,
		Amount:        decimal.NewFromInt(500000),
		PaymentDate:   time.Now(),
	}

	mock.ExpectQuery("INSERT INTO daftar.payments").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(15))

	recorded, err := ds.RecordPayment(context.Background(), payment)
	assert.NoError(t, err)
	assert.Equal(t, int64(15), recorded.ID)
	assert.WithinDuration(t, time.Now(), recorded.CreatedAt, time.Second)
}

func TestRecordPayment_DuplicateReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("INSERT INTO daftar.payments").
		WillReturnError(&pq.Error{Code: "23505", Message: "unique_violation"})

	_, err = ds.RecordPayment(context.Background(), &model.Payment{Reference: "pay_ref_1"})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestUpdatePaymentFlag(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE daftar.payments").
		WithArgs(int64(15), true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows := sqlmock.NewRows([]string{"id", "reference", "student_id", "payment_type", "payment_method", "amount", "student_balance_after", "payment_date", "comment", "mark_for_delete", "created_at"}).
		AddRow(15, "pay_ref_1", 42, "INCOME", "CASH", "500000", "500000", time.Now(), "ошибочная запись", true, time.Now())
	mock.ExpectQuery("SELECT id, reference, student_id").
		WithArgs(int64(15)).
		WillReturnRows(rows)

	updated, err := ds.UpdatePaymentFlag(context.Background(), 15, true, "ошибочная запись")
	assert.NoError(t, err)
	assert.True(t, updated.MarkForDelete)
	assert.Equal(t, "ошибочная запись", updated.Comment)
}

func TestDeletePayment_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE daftar.payments SET is_deleted").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.DeletePayment(context.Background(), 404)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestApplyToDrawer(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO daftar.cash_drawers").
		WithArgs(model.MethodCash, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = ds.ApplyToDrawer(context.Background(), model.MethodCash, decimal.NewFromInt(500000))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

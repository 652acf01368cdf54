package daftar

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/model"
)

func TestCreateStudentWarnsOnSimilarNames(t *testing.T) {
	d, mock := newTestDaftar(t)

	mock.ExpectQuery("SELECT id, full_name FROM daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow(1, "Азиз Каримов").
			AddRow(2, "Диёр Рахимов"))
	mock.ExpectQuery("SELECT MAX").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1000001))
	mock.ExpectQuery("INSERT INTO daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	student := &model.Student{
		FullName:    "Азис Каримов",
		PhoneNumber: gofakeit.Phone(),
		Gender:      model.GenderMale,
		Department:  model.DepartmentSchool,
	}

	created, similar, err := d.CreateStudent(context.Background(), student)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, []string{"Азиз Каримов"}, similar)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudentNoWarningForDistinctNames(t *testing.T) {
	d, mock := newTestDaftar(t)

	mock.ExpectQuery("SELECT id, full_name FROM daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow(1, "Азиз Каримов"))
	mock.ExpectQuery("SELECT MAX").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1000001))
	mock.ExpectQuery("INSERT INTO daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	student := &model.Student{
		FullName:    "Малика Юсупова",
		PhoneNumber: gofakeit.Phone(),
		Gender:      model.GenderFemale,
		Department:  model.DepartmentSchool,
	}

	_, similar, err := d.CreateStudent(context.Background(), student)
	assert.NoError(t, err)
	assert.Empty(t, similar)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollStudentBillsElapsedMonths(t *testing.T) {
	d, mock := newTestDaftar(t)

	// Joined two months ago: three monthly periods get billed.
	joined := model.FirstOfMonth(time.Now()).AddDate(0, -2, 0)

	mock.ExpectQuery("SELECT id, name, start_date").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "price", "teacher_id", "department", "mark_for_delete", "created_at"}).
			AddRow(5, "Математика", joined, joined.AddDate(1, 0, 0), "300000", nil, "SCHOOL", false, time.Now()))
	mock.ExpectQuery("INSERT INTO daftar.enrollments").
		WithArgs(int64(5), int64(42), joined).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	mock.ExpectBegin()
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO daftar.study_charges").
			WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	// The balance drops by three months of the group price.
	mock.ExpectQuery("UPDATE daftar.students").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("-900000"))

	enrollment, err := d.EnrollStudent(context.Background(), 5, 42, joined)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), enrollment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyDebtorsQueuesPersonalizedBatch(t *testing.T) {
	d, mock := newTestDaftar(t)

	debtorRows := sqlmock.NewRows([]string{"id", "full_name", "phone_number", "parent_phone_number", "birthday_date", "gender", "comment", "balance", "department", "account_number", "mark_for_delete", "created_at"}).
		AddRow(42, "Азиз Каримов", "998901234567", "998907654321", nil, "MALE", nil, "-900000", "SCHOOL", 1000001, false, time.Now()).
		AddRow(43, "Малика Юсупова", "998935550101", nil, nil, "FEMALE", nil, "-300000", "SCHOOL", 1000002, false, time.Now()).
		AddRow(44, "Диёр Рахимов", "", nil, nil, "MALE", nil, "-150000", "SCHOOL", 1000003, false, time.Now())
	mock.ExpectQuery("balance < 0").WillReturnRows(debtorRows)

	// The student without a reachable number is skipped; the other two are
	// queued with their own debt amounts.
	notified, err := d.NotifyDebtors(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, notified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnenrollStudentRestoresCharges(t *testing.T) {
	d, mock := newTestDaftar(t)

	mock.ExpectExec("DELETE FROM daftar.enrollments").
		WithArgs(int64(5), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("WITH removed AS").
		WithArgs(int64(42), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("900000"))
	mock.ExpectQuery("UPDATE daftar.students").
		WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("0"))

	err := d.UnenrollStudent(context.Background(), 5, 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

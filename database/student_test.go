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

package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func TestCreateStudent_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	student := &model.Student{
		FullName:    "Азиз Каримов",
		PhoneNumber: "998901234567",
		Gender:      model.GenderMale,
		Department:  model.DepartmentSchool,
	}

	mock.ExpectQuery("SELECT MAX\\(account_number\\) FROM daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(1000041))

	mock.ExpectQuery("INSERT INTO daftar.students").
		WithArgs(student.FullName, student.PhoneNumber, sqlmock.AnyArg(), sqlmock.AnyArg(), student.Gender, sqlmock.AnyArg(), sqlmock.AnyArg(), student.Department, int64(1000042), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := ds.CreateStudent(context.Background(), student)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, int64(1000042), created.AccountNumber)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStudent_FirstAccountNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT MAX\\(account_number\\) FROM daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	mock.ExpectQuery("INSERT INTO daftar.students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	created, err := ds.CreateStudent(context.Background(), &model.Student{FullName: "Test", PhoneNumber: "998900000000"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1000000), created.AccountNumber)
}

func TestGetStudent_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT id, full_name, phone_number").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = ds.GetStudent(context.Background(), 99)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestAdjustStudentBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("UPDATE daftar.students").
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("150000"))

	balance, err := ds.AdjustStudentBalance(context.Background(), 7, decimal.NewFromInt(-50000))
	assert.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(150000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDebtors(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	rows := sqlmock.NewRows([]string{"id", "full_name", "phone_number", "parent_phone_number", "birthday_date", "gender", "comment", "balance", "department", "account_number", "mark_for_delete", "created_at"}).
		AddRow(3, "Лола Юсупова", "998903334455", nil, nil, "FEMALE", nil, "-200000", "SCHOOL", 1000003, false, time.Now())

	mock.ExpectQuery("SELECT id, full_name, phone_number").
		WillReturnRows(rows)

	debtors, err := ds.GetDebtors(context.Background())
	assert.NoError(t, err)
	assert.Len(t, debtors, 1)
	assert.True(t, debtors[0].Balance.LessThan(decimal.Zero))
}

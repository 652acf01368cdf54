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
	"github.com/stretchr/testify/assert"

	"github.com/polica/daftar/model"
)

func TestGetBalanceReport(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "date", "reason", "balance_change_type", "total", "mark_for_delete", "comment_text"}).
		AddRow(11, base, "PAYMENT", "INCOME", "500000", false, "первый взнос").
		AddRow(3, base.Add(24*time.Hour), "STUDY", "OUTCOME", "300000", false, "").
		AddRow(5, base.Add(48*time.Hour), "BONUS", "INCOME", "50000", true, "")

	mock.ExpectQuery("SELECT id, date, reason, balance_change_type").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	entries, err := ds.GetBalanceReport(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, entries, 3)

	assert.Equal(t, model.ReasonPayment, entries[0].Reason)
	assert.Equal(t, model.ChangeIncome, entries[0].BalanceChangeType)
	assert.Equal(t, "первый взнос", entries[0].CommentText)

	assert.Equal(t, model.ReasonStudy, entries[1].Reason)
	assert.False(t, entries[1].MarkForDelete)
	assert.Empty(t, entries[1].CommentText)

	assert.True(t, entries[2].MarkForDelete)

	model.ComputeRunningBalance(entries)
	assert.True(t, entries[2].BalanceAfter.Equal(entries[0].Total.Sub(entries[1].Total).Add(entries[2].Total)))
}

func TestGetBalanceReport_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT id, date, reason, balance_change_type").
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "reason", "balance_change_type", "total", "mark_for_delete", "comment_text"}))

	entries, err := ds.GetBalanceReport(context.Background(), 8)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

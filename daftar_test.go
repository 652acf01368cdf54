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

package daftar

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"

	"github.com/polica/daftar/config"
	"github.com/polica/daftar/database"
)

func newTestDaftar(t *testing.T) (*Daftar, sqlmock.Sqlmock) {
	t.Helper()

	mr := miniredis.RunT(t)
	config.MockConfig(&config.Configuration{
		Redis: config.RedisConfig{Dns: mr.Addr()},
		Queue: config.QueueConfig{
			ChargeQueue:    "new:charge",
			SmsQueue:       "new:sms",
			NumberOfQueues: 2,
		},
		Sms: config.SmsConfig{
			PaymentTemplate: "Оплата на сумму %v принята. Студент: %v",
			DebtorTemplate:  "Ваша задолженность составляет %v.",
		},
	})

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Error opening stub database connection: %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	d, err := NewDaftar(&database.Datasource{Conn: db})
	if err != nil {
		t.Fatalf("Error creating Daftar instance: %s", err)
	}
	return d, mock
}

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
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polica/daftar/internal/notification"
	"github.com/polica/daftar/model"
)

const reportCacheTTL = 5 * time.Minute

// BalanceReport returns the student's ordered ledger with running balances
// filled in. Results are cached per student; every mutation touching the
// student's ledger invalidates the entry.
func (d *Daftar) BalanceReport(ctx context.Context, studentID int64) ([]model.ReportEntry, error) {
	key := reportCacheKey(studentID)

	// Entries are cached as their JSON encoding; decimals keep their exact
	// string form that way.
	var cachedJSON []byte
	if err := d.cache.Get(ctx, key, &cachedJSON); err == nil && len(cachedJSON) > 0 {
		var cached []model.ReportEntry
		if err := json.Unmarshal(cachedJSON, &cached); err == nil {
			return cached, nil
		}
	}

	// The student must exist; an unknown id is a not-found error, not an
	// empty report.
	if _, err := d.datasource.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}

	entries, err := d.datasource.GetBalanceReport(ctx, studentID)
	if err != nil {
		return nil, err
	}
	model.ComputeRunningBalance(entries)

	if encoded, err := json.Marshal(entries); err == nil {
		if err := d.cache.Set(ctx, key, encoded, reportCacheTTL); err != nil {
			notification.NotifyError(err)
		}
	}
	return entries, nil
}

func (d *Daftar) invalidateReport(ctx context.Context, studentID int64) {
	if err := d.cache.Delete(ctx, reportCacheKey(studentID)); err != nil {
		notification.NotifyError(err)
	}
}

func reportCacheKey(studentID int64) string {
	return fmt.Sprintf("balance-report:%d", studentID)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

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

	"github.com/shopspring/decimal"

	"github.com/polica/daftar/model"
)

// RecordAdjustment overrides the student's balance with newBalance and keeps
// the old value on the record so the change can be reversed.
func (d *Daftar) RecordAdjustment(ctx context.Context, studentID int64, newBalance decimal.Decimal, comment string) (*model.BalanceAdjustment, error) {
	student, err := d.datasource.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	adjustment := &model.BalanceAdjustment{
		StudentID:  studentID,
		OldBalance: student.Balance,
		NewBalance: newBalance,
		Comment:    comment,
	}
	recorded, err := d.datasource.RecordAdjustment(ctx, adjustment)
	if err != nil {
		return nil, err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, studentID, adjustment.Diff()); err != nil {
		return nil, err
	}

	d.invalidateReport(ctx, studentID)
	return recorded, nil
}

func (d *Daftar) GetAdjustment(ctx context.Context, id int64) (*model.BalanceAdjustment, error) {
	return d.datasource.GetAdjustment(ctx, id)
}

func (d *Daftar) FlagAdjustment(ctx context.Context, id int64, markForDelete bool, comment string) (*model.BalanceAdjustment, error) {
	updated, err := d.datasource.UpdateAdjustmentFlag(ctx, id, markForDelete, comment)
	if err != nil {
		return nil, err
	}
	d.invalidateReport(ctx, updated.StudentID)
	return updated, nil
}

// DeleteAdjustment removes the adjustment and undoes its balance difference.
func (d *Daftar) DeleteAdjustment(ctx context.Context, id int64) error {
	adjustment, err := d.datasource.GetAdjustment(ctx, id)
	if err != nil {
		return err
	}

	if err := d.datasource.DeleteAdjustment(ctx, id); err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, adjustment.StudentID, adjustment.Diff().Neg()); err != nil {
		return err
	}

	d.invalidateReport(ctx, adjustment.StudentID)
	return nil
}

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

	"github.com/polica/daftar/model"
)

// RecordBonus credits the bonus amount to the student's balance.
func (d *Daftar) RecordBonus(ctx context.Context, bonus *model.StudentBonus) (*model.StudentBonus, error) {
	if _, err := d.datasource.GetStudent(ctx, bonus.StudentID); err != nil {
		return nil, err
	}

	recorded, err := d.datasource.RecordBonus(ctx, bonus)
	if err != nil {
		return nil, err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, bonus.StudentID, bonus.Amount); err != nil {
		return nil, err
	}

	d.invalidateReport(ctx, bonus.StudentID)
	return recorded, nil
}

func (d *Daftar) GetBonus(ctx context.Context, id int64) (*model.StudentBonus, error) {
	return d.datasource.GetBonus(ctx, id)
}

func (d *Daftar) FlagBonus(ctx context.Context, id int64, markForDelete bool, comment string) (*model.StudentBonus, error) {
	updated, err := d.datasource.UpdateBonusFlag(ctx, id, markForDelete, comment)
	if err != nil {
		return nil, err
	}
	d.invalidateReport(ctx, updated.StudentID)
	return updated, nil
}

// DeleteBonus removes the bonus and takes its amount back off the balance.
func (d *Daftar) DeleteBonus(ctx context.Context, id int64) error {
	bonus, err := d.datasource.GetBonus(ctx, id)
	if err != nil {
		return err
	}

	if err := d.datasource.DeleteBonus(ctx, id); err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, bonus.StudentID, bonus.Amount.Neg()); err != nil {
		return err
	}

	d.invalidateReport(ctx, bonus.StudentID)
	return nil
}

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
	"time"

	"github.com/google/uuid"

	redlock "github.com/polica/daftar/internal/lock"
	"github.com/polica/daftar/internal/notification"
	"github.com/polica/daftar/model"
)

const chargeSweepLockKey = "monthly-charges-lock"

// GenerateMonthlyCharges fans a billing task out per active enrollment. The
// workers apply the current month's charge; enrollments already billed for
// the month are skipped by the task handler. A Redis lock keeps two workers
// from sweeping the same month concurrently; a held lock skips the run.
func (d *Daftar) GenerateMonthlyCharges(ctx context.Context) (int, error) {
	locker := redlock.NewLocker(d.redis, chargeSweepLockKey, uuid.New().String())
	if err := locker.Lock(ctx, 10*time.Minute); err != nil {
		return 0, err
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			notification.NotifyError(err)
		}
	}()

	enrollments, err := d.datasource.GetAllEnrollments(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, enrollment := range enrollments {
		task := ChargeTaskPayload{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			GroupID:      enrollment.GroupID,
		}
		if err := d.queue.EnqueueCharge(ctx, task); err != nil {
			notification.NotifyError(err)
			continue
		}
		queued++
	}
	return queued, nil
}

// ProcessChargeTask bills one enrollment for the current month. Idempotent
// per (student, group, month); re-delivered tasks change nothing.
func (d *Daftar) ProcessChargeTask(ctx context.Context, task ChargeTaskPayload) error {
	group, err := d.datasource.GetStudyGroup(ctx, task.GroupID)
	if err != nil {
		return err
	}

	period := model.FirstOfMonth(time.Now())
	exists, err := d.datasource.StudyChargeExists(ctx, task.StudentID, task.GroupID, period.Format("2006-01-02"))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	charge := model.StudyCharge{
		StudentID:  task.StudentID,
		GroupID:    task.GroupID,
		Amount:     group.Price,
		ChargeDate: period,
	}
	if err := d.datasource.RecordStudyCharges(ctx, []model.StudyCharge{charge}); err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, task.StudentID, group.Price.Neg()); err != nil {
		return err
	}

	d.invalidateReport(ctx, task.StudentID)
	return nil
}

func (d *Daftar) GetStudyCharge(ctx context.Context, id int64) (*model.StudyCharge, error) {
	return d.datasource.GetStudyCharge(ctx, id)
}

// DeleteStudyCharge removes a single charge and restores its amount. Exposed
// on the API surface for back-office repair; the ledger view never calls it.
func (d *Daftar) DeleteStudyCharge(ctx context.Context, id int64) error {
	charge, err := d.datasource.GetStudyCharge(ctx, id)
	if err != nil {
		return err
	}

	if err := d.datasource.DeleteStudyCharge(ctx, id); err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, charge.StudentID, charge.Amount); err != nil {
		return err
	}

	d.invalidateReport(ctx, charge.StudentID)
	return nil
}

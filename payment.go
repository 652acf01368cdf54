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
	"fmt"

	"github.com/google/uuid"

	"github.com/polica/daftar/config"
	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/internal/notification"
	"github.com/polica/daftar/model"
)

// RecordPayment applies a payment to the student's balance and the method's
// cash drawer, then queues the receipt SMS. The recorded payment carries the
// balance the student ended up with.
func (d *Daftar) RecordPayment(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	if !payment.PaymentMethod.Valid() {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Unknown payment method", payment.PaymentMethod)
	}
	if payment.Reference == "" {
		payment.Reference = fmt.Sprintf("pay_%s", uuid.New())
	}

	student, err := d.datasource.GetStudent(ctx, payment.StudentID)
	if err != nil {
		return nil, err
	}

	balance, err := d.datasource.AdjustStudentBalance(ctx, student.ID, payment.BalanceEffect())
	if err != nil {
		return nil, err
	}
	payment.StudentBalanceAfter = balance

	recorded, err := d.datasource.RecordPayment(ctx, payment)
	if err != nil {
		// Roll the balance back so a failed insert leaves no trace.
		if _, revErr := d.datasource.AdjustStudentBalance(ctx, student.ID, payment.BalanceEffect().Neg()); revErr != nil {
			notification.NotifyError(revErr)
		}
		return nil, err
	}

	if err := d.datasource.ApplyToDrawer(ctx, payment.PaymentMethod, payment.BalanceEffect()); err != nil {
		return nil, err
	}

	d.invalidateReport(ctx, student.ID)
	d.queuePaymentSms(ctx, recorded, student)

	return recorded, nil
}

func (d *Daftar) queuePaymentSms(ctx context.Context, payment *model.Payment, student *model.Student) {
	conf, err := config.Fetch()
	if err != nil {
		notification.NotifyError(err)
		return
	}
	recipients := student.PhoneNumbers()
	if len(recipients) == 0 {
		return
	}
	text := fmt.Sprintf(conf.Sms.PaymentTemplate, payment.Amount, student.FullName)
	if err := d.queue.EnqueueSms(ctx, SmsTaskPayload{Recipients: recipients, Text: text}); err != nil {
		notification.NotifyError(err)
	}
}

func (d *Daftar) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	return d.datasource.GetPayment(ctx, id)
}

// FlagPayment updates the soft correction flag and comment. The payment's
// balance and drawer effects stay in place.
func (d *Daftar) FlagPayment(ctx context.Context, id int64, markForDelete bool, comment string) (*model.Payment, error) {
	updated, err := d.datasource.UpdatePaymentFlag(ctx, id, markForDelete, comment)
	if err != nil {
		return nil, err
	}
	d.invalidateReport(ctx, updated.StudentID)
	return updated, nil
}

// DeletePayment removes the payment and reverses its balance and drawer
// effects.
func (d *Daftar) DeletePayment(ctx context.Context, id int64) error {
	payment, err := d.datasource.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	if err := d.datasource.DeletePayment(ctx, id); err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, payment.StudentID, payment.BalanceEffect().Neg()); err != nil {
		return err
	}
	if err := d.datasource.ApplyToDrawer(ctx, payment.PaymentMethod, payment.BalanceEffect().Neg()); err != nil {
		return err
	}

	d.invalidateReport(ctx, payment.StudentID)
	return nil
}

// GetDrawers lists the per-method cash drawers.
func (d *Daftar) GetDrawers(ctx context.Context) ([]model.CashDrawer, error) {
	return d.datasource.GetDrawers(ctx)
}

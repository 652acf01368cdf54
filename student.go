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
	"strings"
	"time"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/polica/daftar/config"
	"github.com/polica/daftar/internal/notification"
	"github.com/polica/daftar/internal/sms"
	"github.com/polica/daftar/model"
)

// duplicateDistance is the maximum Levenshtein distance at which two student
// names are reported as possible duplicates.
const duplicateDistance = 2

// CreateStudent registers a new student and returns the names of existing
// students whose full name is close enough to be a possible duplicate. The
// warning never blocks creation; the operator decides.
func (d *Daftar) CreateStudent(ctx context.Context, student *model.Student) (*model.Student, []string, error) {
	similar, err := d.findSimilarStudents(ctx, student.FullName)
	if err != nil {
		notification.NotifyError(err)
		similar = nil
	}

	created, err := d.datasource.CreateStudent(ctx, student)
	if err != nil {
		return nil, nil, err
	}
	return created, similar, nil
}

func (d *Daftar) findSimilarStudents(ctx context.Context, fullName string) ([]string, error) {
	names, err := d.datasource.GetStudentNames(ctx)
	if err != nil {
		return nil, err
	}

	target := []rune(strings.ToLower(strings.TrimSpace(fullName)))
	similar := []string{}
	for _, name := range names {
		candidate := []rune(strings.ToLower(strings.TrimSpace(name)))
		distance := levenshtein.DistanceForStrings(target, candidate, levenshtein.DefaultOptions)
		if distance <= duplicateDistance {
			similar = append(similar, name)
		}
	}
	return similar, nil
}

func (d *Daftar) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	return d.datasource.GetStudent(ctx, id)
}

func (d *Daftar) GetAllStudents(ctx context.Context, limit, offset int) ([]model.Student, error) {
	return d.datasource.GetAllStudents(ctx, limit, offset)
}

func (d *Daftar) UpdateStudent(ctx context.Context, student *model.Student) error {
	return d.datasource.UpdateStudent(ctx, student)
}

func (d *Daftar) DeleteStudent(ctx context.Context, id int64) error {
	if err := d.datasource.DeleteStudent(ctx, id); err != nil {
		return err
	}
	d.invalidateReport(ctx, id)
	return nil
}

// EnrollStudent adds the student to the group and bills one charge per month
// elapsed since joinedDate at the group price, matching how charges would
// have accumulated had the student been enrolled from that date.
func (d *Daftar) EnrollStudent(ctx context.Context, groupID, studentID int64, joinedDate time.Time) (*model.Enrollment, error) {
	group, err := d.datasource.GetStudyGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if joinedDate.IsZero() {
		joinedDate = group.StartDate
	}

	enrollment, err := d.datasource.EnrollStudent(ctx, &model.Enrollment{
		GroupID:    groupID,
		StudentID:  studentID,
		JoinedDate: joinedDate,
	})
	if err != nil {
		return nil, err
	}

	periods := model.ChargePeriods(joinedDate, time.Now())
	charges := make([]model.StudyCharge, 0, len(periods))
	total := group.Price.Mul(decimalFromInt(len(periods)))
	for _, period := range periods {
		charges = append(charges, model.StudyCharge{
			StudentID:  studentID,
			GroupID:    groupID,
			Amount:     group.Price,
			ChargeDate: period,
		})
	}
	if err := d.datasource.RecordStudyCharges(ctx, charges); err != nil {
		return nil, err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, studentID, total.Neg()); err != nil {
		return nil, err
	}

	d.invalidateReport(ctx, studentID)
	return enrollment, nil
}

// UnenrollStudent removes the student from the group, deletes every charge
// the enrollment generated and restores their sum to the balance.
func (d *Daftar) UnenrollStudent(ctx context.Context, groupID, studentID int64) error {
	if err := d.datasource.UnenrollStudent(ctx, groupID, studentID); err != nil {
		return err
	}
	total, err := d.datasource.DeleteStudyChargesByEnrollment(ctx, studentID, groupID)
	if err != nil {
		return err
	}
	if _, err := d.datasource.AdjustStudentBalance(ctx, studentID, total); err != nil {
		return err
	}

	d.invalidateReport(ctx, studentID)
	return nil
}

// NotifyDebtors queues a reminder SMS for every student with a negative
// balance. Each message carries that student's own debt amount, so the whole
// run goes out as one per-recipient batch.
func (d *Daftar) NotifyDebtors(ctx context.Context) (int, error) {
	conf, err := config.Fetch()
	if err != nil {
		return 0, err
	}

	debtors, err := d.datasource.GetDebtors(ctx)
	if err != nil {
		return 0, err
	}

	messages := []sms.Message{}
	notified := 0
	for _, student := range debtors {
		recipients := student.PhoneNumbers()
		if len(recipients) == 0 {
			continue
		}
		text := fmt.Sprintf(conf.Sms.DebtorTemplate, student.Balance.Abs())
		for _, number := range recipients {
			messages = append(messages, sms.Message{Recipient: number, Text: text})
		}
		notified++
	}
	if len(messages) == 0 {
		return 0, nil
	}

	if err := d.queue.EnqueueSms(ctx, SmsTaskPayload{Messages: messages}); err != nil {
		notification.NotifyError(err)
		return 0, err
	}
	return notified, nil
}

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
package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/polica/daftar/model"
)

const dateLayout = "2006-01-02"

func validateDate(value interface{}) error {
	dateStr, ok := value.(string)
	if !ok {
		return errors.New("invalid type for date")
	}
	if _, err := time.Parse(dateLayout, dateStr); err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 2024-04-22)")
	}
	return nil
}

func parseDate(value string) time.Time {
	t, _ := time.Parse(dateLayout, value)
	return t
}

func (s *CreateStudent) ValidateCreateStudent() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.FullName, validation.Required),
		validation.Field(&s.PhoneNumber, validation.Required),
		validation.Field(&s.Gender, validation.Required, validation.In("MALE", "FEMALE")),
		validation.Field(&s.Department, validation.Required),
		validation.Field(&s.BirthdayDate, validation.When(s.BirthdayDate != "", validation.By(validateDate))),
	)
}

func (s *CreateStudent) ToStudent() *model.Student {
	student := &model.Student{
		FullName:          s.FullName,
		PhoneNumber:       s.PhoneNumber,
		ParentPhoneNumber: s.ParentPhoneNumber,
		Gender:            model.Gender(s.Gender),
		Comment:           s.Comment,
		Department:        model.Department(s.Department),
	}
	if s.BirthdayDate != "" {
		birthday := parseDate(s.BirthdayDate)
		student.BirthdayDate = &birthday
	}
	return student
}

func (g *CreateStudyGroup) ValidateCreateStudyGroup() error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Name, validation.Required),
		validation.Field(&g.StartDate, validation.Required, validation.By(validateDate)),
		validation.Field(&g.EndDate, validation.Required, validation.By(validateDate)),
		validation.Field(&g.Price, validation.Required),
		validation.Field(&g.Department, validation.Required),
	)
}

func (g *CreateStudyGroup) ToStudyGroup() *model.StudyGroup {
	return &model.StudyGroup{
		Name:       g.Name,
		StartDate:  parseDate(g.StartDate),
		EndDate:    parseDate(g.EndDate),
		Price:      g.Price,
		TeacherID:  g.TeacherID,
		Department: model.Department(g.Department),
	}
}

func (e *EnrollStudent) ValidateEnrollStudent() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.GroupID, validation.Required),
		validation.Field(&e.StudentID, validation.Required),
		validation.Field(&e.JoinedDate, validation.When(e.JoinedDate != "", validation.By(validateDate))),
	)
}

// JoinedDateTime returns the parsed joined date, or the zero time when the
// field was omitted and the group's start date should be used.
func (e *EnrollStudent) JoinedDateTime() time.Time {
	if e.JoinedDate == "" {
		return time.Time{}
	}
	return parseDate(e.JoinedDate)
}

func (p *RecordPayment) ValidateRecordPayment() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.StudentID, validation.Required),
		validation.Field(&p.PaymentType, validation.Required, validation.In("INCOME", "OUTCOME")),
		validation.Field(&p.PaymentMethod, validation.Required),
		validation.Field(&p.Amount, validation.Required),
		validation.Field(&p.PaymentDate, validation.When(p.PaymentDate != "", validation.By(validateDate))),
	)
}

func (p *RecordPayment) ToPayment() *model.Payment {
	payment := &model.Payment{
		Reference:     p.Reference,
		StudentID:     p.StudentID,
		PaymentType:   model.PaymentType(p.PaymentType),
		PaymentMethod: model.PaymentMethod(p.PaymentMethod),
		Amount:        p.Amount,
		Comment:       p.Comment,
		PaymentDate:   time.Now(),
	}
	if p.PaymentDate != "" {
		payment.PaymentDate = parseDate(p.PaymentDate)
	}
	return payment
}

func (b *RecordBonus) ValidateRecordBonus() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.StudentID, validation.Required),
		validation.Field(&b.Amount, validation.Required),
	)
}

func (b *RecordBonus) ToBonus() *model.StudentBonus {
	return &model.StudentBonus{
		StudentID: b.StudentID,
		Amount:    b.Amount,
		Comment:   b.Comment,
	}
}

func (a *RecordAdjustment) ValidateRecordAdjustment() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.StudentID, validation.Required),
	)
}

func (u *CreateUser) ValidateCreateUser() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Username, validation.Required),
		validation.Field(&u.FullName, validation.Required),
		validation.Field(&u.Role, validation.Required),
		validation.Field(&u.Password, validation.Required, validation.Length(8, 0)),
	)
}

func (u *CreateUser) ToUser() *model.User {
	return &model.User{
		Username:    u.Username,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Role:        model.Role(u.Role),
	}
}

func (l *Login) ValidateLogin() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Username, validation.Required),
		validation.Field(&l.Password, validation.Required),
	)
}

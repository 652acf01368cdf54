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

	"github.com/shopspring/decimal"

	"github.com/polica/daftar/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	student
	studyGroup
	payment
	bonus
	adjustment
	studyCharge
	cashDrawer
	user
	report
}

// student defines methods for handling students.
type student interface {
	CreateStudent(ctx context.Context, s *model.Student) (*model.Student, error)
	GetStudent(ctx context.Context, id int64) (*model.Student, error)
	GetAllStudents(ctx context.Context, limit, offset int) ([]model.Student, error)
	UpdateStudent(ctx context.Context, s *model.Student) error
	DeleteStudent(ctx context.Context, id int64) error
	AdjustStudentBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	GetDebtors(ctx context.Context) ([]model.Student, error)
	GetStudentNames(ctx context.Context) (map[int64]string, error)
}

// studyGroup defines methods for handling study groups and enrollment.
type studyGroup interface {
	CreateStudyGroup(ctx context.Context, g *model.StudyGroup) (*model.StudyGroup, error)
	GetStudyGroup(ctx context.Context, id int64) (*model.StudyGroup, error)
	GetAllStudyGroups(ctx context.Context, limit, offset int) ([]model.StudyGroup, error)
	UpdateStudyGroup(ctx context.Context, g *model.StudyGroup) error
	DeleteStudyGroup(ctx context.Context, id int64) error
	EnrollStudent(ctx context.Context, e *model.Enrollment) (*model.Enrollment, error)
	UnenrollStudent(ctx context.Context, groupID, studentID int64) error
	GetStudentEnrollments(ctx context.Context, studentID int64) ([]model.Enrollment, error)
	GetAllEnrollments(ctx context.Context) ([]model.Enrollment, error)
}

// payment defines methods for handling payments.
type payment interface {
	RecordPayment(ctx context.Context, p *model.Payment) (*model.Payment, error)
	GetPayment(ctx context.Context, id int64) (*model.Payment, error)
	UpdatePaymentFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// bonus defines methods for handling student bonuses.
type bonus interface {
	RecordBonus(ctx context.Context, b *model.StudentBonus) (*model.StudentBonus, error)
	GetBonus(ctx context.Context, id int64) (*model.StudentBonus, error)
	UpdateBonusFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.StudentBonus, error)
	DeleteBonus(ctx context.Context, id int64) error
}

// adjustment defines methods for handling balance adjustments.
type adjustment interface {
	RecordAdjustment(ctx context.Context, a *model.BalanceAdjustment) (*model.BalanceAdjustment, error)
	GetAdjustment(ctx context.Context, id int64) (*model.BalanceAdjustment, error)
	UpdateAdjustmentFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.BalanceAdjustment, error)
	DeleteAdjustment(ctx context.Context, id int64) error
}

// studyCharge defines methods for handling enrollment-generated lesson charges.
type studyCharge interface {
	RecordStudyCharges(ctx context.Context, charges []model.StudyCharge) error
	GetStudyCharge(ctx context.Context, id int64) (*model.StudyCharge, error)
	StudyChargeExists(ctx context.Context, studentID, groupID int64, chargeDate string) (bool, error)
	DeleteStudyCharge(ctx context.Context, id int64) error
	DeleteStudyChargesByEnrollment(ctx context.Context, studentID, groupID int64) (decimal.Decimal, error)
}

// cashDrawer defines methods for the per-method cash drawers.
type cashDrawer interface {
	ApplyToDrawer(ctx context.Context, method model.PaymentMethod, delta decimal.Decimal) error
	GetDrawers(ctx context.Context) ([]model.CashDrawer, error)
}

// user defines methods for operator accounts.
type user interface {
	CreateUser(ctx context.Context, u *model.User) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByToken(ctx context.Context, token string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateUserToken(ctx context.Context, id int64, token string) error
}

// report defines methods for assembling the student balance report.
type report interface {
	GetBalanceReport(ctx context.Context, studentID int64) ([]model.ReportEntry, error)
}

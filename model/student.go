package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type Department string

const (
	DepartmentSchool       Department = "SCHOOL"
	DepartmentKindergarten Department = "KINDERGARTEN"
	DepartmentCamp         Department = "CAMP"
)

type Student struct {
	ID                int64           `json:"id"`
	FullName          string          `json:"full_name"`
	PhoneNumber       string          `json:"phone_number"`
	ParentPhoneNumber string          `json:"parent_phone_number,omitempty"`
	BirthdayDate      *time.Time      `json:"birthday_date,omitempty"`
	Gender            Gender          `json:"gender"`
	Comment           string          `json:"comment,omitempty"`
	Balance           decimal.Decimal `json:"balance"`
	Department        Department      `json:"department"`
	AccountNumber     int64           `json:"account_number"`
	MarkForDelete     bool            `json:"mark_for_delete"`
	IsDeleted         bool            `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
}

// PhoneNumbers returns the student's reachable numbers for SMS delivery.
func (s *Student) PhoneNumbers() []string {
	numbers := make([]string, 0, 2)
	if s.PhoneNumber != "" {
		numbers = append(numbers, s.PhoneNumber)
	}
	if s.ParentPhoneNumber != "" {
		numbers = append(numbers, s.ParentPhoneNumber)
	}
	return numbers
}

type StudyGroup struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Price         decimal.Decimal `json:"price"`
	TeacherID     *int64          `json:"teacher_id,omitempty"`
	Department    Department      `json:"department"`
	MarkForDelete bool            `json:"mark_for_delete"`
	IsDeleted     bool            `json:"-"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Enrollment links a student to a study group. JoinedDate anchors monthly
// charge generation.
type Enrollment struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	StudentID  int64     `json:"student_id"`
	JoinedDate time.Time `json:"joined_date"`
}

// ChargePeriods returns the first-of-month dates a student enrolled on
// joinedDate owes charges for, as of now. Enrollment in the current month
// yields a single period.
func ChargePeriods(joinedDate, now time.Time) []time.Time {
	months := MonthsBetween(joinedDate, now)
	if months < 0 {
		return nil
	}
	periods := make([]time.Time, 0, months+1)
	period := FirstOfMonth(joinedDate)
	for i := 0; i <= months; i++ {
		periods = append(periods, period)
		period = period.AddDate(0, 1, 0)
	}
	return periods
}

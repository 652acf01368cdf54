package model

import "github.com/shopspring/decimal"

type CreateStudent struct {
	FullName          string `json:"full_name"`
	PhoneNumber       string `json:"phone_number"`
	ParentPhoneNumber string `json:"parent_phone_number"`
	BirthdayDate      string `json:"birthday_date"`
	Gender            string `json:"gender"`
	Comment           string `json:"comment"`
	Department        string `json:"department"`
}

type CreateStudyGroup struct {
	Name       string          `json:"name"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Price      decimal.Decimal `json:"price"`
	TeacherID  *int64          `json:"teacher_id"`
	Department string          `json:"department"`
}

type EnrollStudent struct {
	GroupID    int64  `json:"group_id"`
	StudentID  int64  `json:"student_id"`
	JoinedDate string `json:"joined_date"`
}

type CreateUser struct {
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

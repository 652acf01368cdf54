package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) CreateStudent(ctx context.Context, s *model.Student) (*model.Student, error) {
	s.CreatedAt = time.Now()

	if s.AccountNumber == 0 {
		number, err := d.nextAccountNumber(ctx)
		if err != nil {
			return nil, err
		}
		s.AccountNumber = number
	}

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.students (full_name, phone_number, parent_phone_number, birthday_date, gender, comment, balance, department, account_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, s.FullName, s.PhoneNumber, nullString(s.ParentPhoneNumber), s.BirthdayDate, s.Gender, nullString(s.Comment), s.Balance, s.Department, s.AccountNumber, s.CreatedAt).Scan(&s.ID)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Student with this account number already exists", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create student", err)
	}

	return s, nil
}

// nextAccountNumber continues the sequence of operator-visible account
// numbers, starting at 1000000.
func (d Datasource) nextAccountNumber(ctx context.Context) (int64, error) {
	var number sql.NullInt64
	err := d.Conn.QueryRowContext(ctx, `
		SELECT MAX(account_number) FROM daftar.students
	`).Scan(&number)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to allocate account number", err)
	}
	if !number.Valid {
		return 1000000, nil
	}
	return number.Int64 + 1, nil
}

func (d Datasource) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	s := model.Student{}
	var parentPhone, comment sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, full_name, phone_number, parent_phone_number, birthday_date, gender, comment, balance, department, account_number, mark_for_delete, created_at
		FROM daftar.students
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&s.ID, &s.FullName, &s.PhoneNumber, &parentPhone, &s.BirthdayDate, &s.Gender, &comment, &s.Balance, &s.Department, &s.AccountNumber, &s.MarkForDelete, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Student not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve student", err)
	}
	s.ParentPhoneNumber = parentPhone.String
	s.Comment = comment.String

	return &s, nil
}

func (d Datasource) GetAllStudents(ctx context.Context, limit, offset int) ([]model.Student, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, full_name, phone_number, parent_phone_number, birthday_date, gender, comment, balance, department, account_number, mark_for_delete, created_at
		FROM daftar.students
		WHERE is_deleted = FALSE
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve students", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		s := model.Student{}
		var parentPhone, comment sql.NullString
		err = rows.Scan(&s.ID, &s.FullName, &s.PhoneNumber, &parentPhone, &s.BirthdayDate, &s.Gender, &comment, &s.Balance, &s.Department, &s.AccountNumber, &s.MarkForDelete, &s.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan student data", err)
		}
		s.ParentPhoneNumber = parentPhone.String
		s.Comment = comment.String
		students = append(students, s)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over students", err)
	}

	return students, nil
}

func (d Datasource) UpdateStudent(ctx context.Context, s *model.Student) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.students
		SET full_name = $2, phone_number = $3, parent_phone_number = $4, birthday_date = $5, gender = $6, comment = $7, department = $8, mark_for_delete = $9
		WHERE id = $1 AND is_deleted = FALSE
	`, s.ID, s.FullName, s.PhoneNumber, nullString(s.ParentPhoneNumber), s.BirthdayDate, s.Gender, nullString(s.Comment), s.Department, s.MarkForDelete)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update student", err)
	}
	return requireAffected(result, "Student not found")
}

func (d Datasource) DeleteStudent(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.students SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete student", err)
	}
	return requireAffected(result, "Student not found")
}

// AdjustStudentBalance applies delta to the student's balance atomically and
// returns the resulting value.
func (d Datasource) AdjustStudentBalance(ctx context.Context, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := d.Conn.QueryRowContext(ctx, `
		UPDATE daftar.students
		SET balance = balance + $2
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING balance
	`, id, delta).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, apierror.NewAPIError(apierror.ErrNotFound, "Student not found", err)
		}
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to adjust student balance", err)
	}
	return balance, nil
}

// GetDebtors returns students whose balance is below zero, for the reminder
// SMS run.
func (d Datasource) GetDebtors(ctx context.Context) ([]model.Student, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, full_name, phone_number, parent_phone_number, birthday_date, gender, comment, balance, department, account_number, mark_for_delete, created_at
		FROM daftar.students
		WHERE is_deleted = FALSE AND balance < 0
		ORDER BY balance ASC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve debtors", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		s := model.Student{}
		var parentPhone, comment sql.NullString
		err = rows.Scan(&s.ID, &s.FullName, &s.PhoneNumber, &parentPhone, &s.BirthdayDate, &s.Gender, &comment, &s.Balance, &s.Department, &s.AccountNumber, &s.MarkForDelete, &s.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan student data", err)
		}
		s.ParentPhoneNumber = parentPhone.String
		s.Comment = comment.String
		students = append(students, s)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over debtors", err)
	}

	return students, nil
}

// GetStudentNames returns id to full name for all active students, used for
// duplicate detection on create.
func (d Datasource) GetStudentNames(ctx context.Context) (map[int64]string, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, full_name FROM daftar.students WHERE is_deleted = FALSE
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve student names", err)
	}
	defer rows.Close()

	names := map[int64]string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan student name", err)
		}
		names[id] = name
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over student names", err)
	}

	return names, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireAffected(result sql.Result, notFoundMsg string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read affected rows", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, notFoundMsg, nil)
	}
	return nil
}

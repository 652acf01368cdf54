package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) CreateStudyGroup(ctx context.Context, g *model.StudyGroup) (*model.StudyGroup, error) {
	g.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.study_groups (name, start_date, end_date, price, teacher_id, department, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, g.Name, g.StartDate, g.EndDate, g.Price, g.TeacherID, g.Department, g.CreatedAt).Scan(&g.ID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create study group", err)
	}

	return g, nil
}

func (d Datasource) GetStudyGroup(ctx context.Context, id int64) (*model.StudyGroup, error) {
	g := model.StudyGroup{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, name, start_date, end_date, price, teacher_id, department, mark_for_delete, created_at
		FROM daftar.study_groups
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&g.ID, &g.Name, &g.StartDate, &g.EndDate, &g.Price, &g.TeacherID, &g.Department, &g.MarkForDelete, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Study group not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve study group", err)
	}
	return &g, nil
}

func (d Datasource) GetAllStudyGroups(ctx context.Context, limit, offset int) ([]model.StudyGroup, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, name, start_date, end_date, price, teacher_id, department, mark_for_delete, created_at
		FROM daftar.study_groups
		WHERE is_deleted = FALSE
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve study groups", err)
	}
	defer rows.Close()

	groups := []model.StudyGroup{}
	for rows.Next() {
		g := model.StudyGroup{}
		err = rows.Scan(&g.ID, &g.Name, &g.StartDate, &g.EndDate, &g.Price, &g.TeacherID, &g.Department, &g.MarkForDelete, &g.CreatedAt)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan study group data", err)
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over study groups", err)
	}

	return groups, nil
}

func (d Datasource) UpdateStudyGroup(ctx context.Context, g *model.StudyGroup) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.study_groups
		SET name = $2, start_date = $3, end_date = $4, price = $5, teacher_id = $6, department = $7, mark_for_delete = $8
		WHERE id = $1 AND is_deleted = FALSE
	`, g.ID, g.Name, g.StartDate, g.EndDate, g.Price, g.TeacherID, g.Department, g.MarkForDelete)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update study group", err)
	}
	return requireAffected(result, "Study group not found")
}

func (d Datasource) DeleteStudyGroup(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.study_groups SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete study group", err)
	}
	return requireAffected(result, "Study group not found")
}

func (d Datasource) EnrollStudent(ctx context.Context, e *model.Enrollment) (*model.Enrollment, error) {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.enrollments (group_id, student_id, joined_date)
		VALUES ($1, $2, $3)
		RETURNING id
	`, e.GroupID, e.StudentID, e.JoinedDate).Scan(&e.ID)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Student already enrolled in this group", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to enroll student", err)
	}
	return e, nil
}

func (d Datasource) UnenrollStudent(ctx context.Context, groupID, studentID int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM daftar.enrollments WHERE group_id = $1 AND student_id = $2
	`, groupID, studentID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unenroll student", err)
	}
	return requireAffected(result, "Enrollment not found")
}

func (d Datasource) GetStudentEnrollments(ctx context.Context, studentID int64) ([]model.Enrollment, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, group_id, student_id, joined_date
		FROM daftar.enrollments
		WHERE student_id = $1
		ORDER BY id
	`, studentID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve enrollments", err)
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

// GetAllEnrollments feeds the monthly charge run.
func (d Datasource) GetAllEnrollments(ctx context.Context) ([]model.Enrollment, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT e.id, e.group_id, e.student_id, e.joined_date
		FROM daftar.enrollments e
		JOIN daftar.study_groups g ON g.id = e.group_id
		JOIN daftar.students s ON s.id = e.student_id
		WHERE g.is_deleted = FALSE AND s.is_deleted = FALSE
		ORDER BY e.id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve enrollments", err)
	}
	defer rows.Close()
	return scanEnrollments(rows)
}

func scanEnrollments(rows *sql.Rows) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	for rows.Next() {
		e := model.Enrollment{}
		if err := rows.Scan(&e.ID, &e.GroupID, &e.StudentID, &e.JoinedDate); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan enrollment data", err)
		}
		enrollments = append(enrollments, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over enrollments", err)
	}
	return enrollments, nil
}

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) RecordBonus(ctx context.Context, b *model.StudentBonus) (*model.StudentBonus, error) {
	b.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.student_bonuses (student_id, amount, comment, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, b.StudentID, b.Amount, nullString(b.Comment), b.CreatedAt).Scan(&b.ID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record bonus", err)
	}

	return b, nil
}

func (d Datasource) GetBonus(ctx context.Context, id int64) (*model.StudentBonus, error) {
	b := model.StudentBonus{}
	var comment sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, student_id, amount, comment, mark_for_delete, created_at
		FROM daftar.student_bonuses
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&b.ID, &b.StudentID, &b.Amount, &comment, &b.MarkForDelete, &b.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Bonus not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve bonus", err)
	}
	b.Comment = comment.String

	return &b, nil
}

func (d Datasource) UpdateBonusFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.StudentBonus, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.student_bonuses
		SET mark_for_delete = $2, comment = $3
		WHERE id = $1 AND is_deleted = FALSE
	`, id, markForDelete, nullString(comment))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update bonus", err)
	}
	if err := requireAffected(result, "Bonus not found"); err != nil {
		return nil, err
	}
	return d.GetBonus(ctx, id)
}

func (d Datasource) DeleteBonus(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.student_bonuses SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete bonus", err)
	}
	return requireAffected(result, "Bonus not found")
}

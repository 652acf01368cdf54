package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) RecordAdjustment(ctx context.Context, a *model.BalanceAdjustment) (*model.BalanceAdjustment, error) {
	a.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.balance_adjustments (student_id, old_balance, new_balance, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.StudentID, a.OldBalance, a.NewBalance, nullString(a.Comment), a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record balance adjustment", err)
	}

	return a, nil
}

func (d Datasource) GetAdjustment(ctx context.Context, id int64) (*model.BalanceAdjustment, error) {
	a := model.BalanceAdjustment{}
	var comment sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, student_id, old_balance, new_balance, comment, mark_for_delete, created_at
		FROM daftar.balance_adjustments
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&a.ID, &a.StudentID, &a.OldBalance, &a.NewBalance, &comment, &a.MarkForDelete, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Balance adjustment not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve balance adjustment", err)
	}
	a.Comment = comment.String

	return &a, nil
}

func (d Datasource) UpdateAdjustmentFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.BalanceAdjustment, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.balance_adjustments
		SET mark_for_delete = $2, comment = $3
		WHERE id = $1 AND is_deleted = FALSE
	`, id, markForDelete, nullString(comment))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update balance adjustment", err)
	}
	if err := requireAffected(result, "Balance adjustment not found"); err != nil {
		return nil, err
	}
	return d.GetAdjustment(ctx, id)
}

func (d Datasource) DeleteAdjustment(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.balance_adjustments SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete balance adjustment", err)
	}
	return requireAffected(result, "Balance adjustment not found")
}

package database

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

// RecordStudyCharges inserts a batch of monthly charges in one transaction.
// Charges already present for the same student, group and period are skipped.
func (d Datasource) RecordStudyCharges(ctx context.Context, charges []model.StudyCharge) error {
	if len(charges) == 0 {
		return nil
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, charge := range charges {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO daftar.study_charges (student_id, group_id, amount, charge_date)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (student_id, group_id, charge_date) DO NOTHING
		`, charge.StudentID, charge.GroupID, charge.Amount, charge.ChargeDate)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record study charge", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit study charges", err)
	}
	return nil
}

func (d Datasource) GetStudyCharge(ctx context.Context, id int64) (*model.StudyCharge, error) {
	c := model.StudyCharge{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, student_id, group_id, amount, charge_date, created_at
		FROM daftar.study_charges
		WHERE id = $1
	`, id).Scan(&c.ID, &c.StudentID, &c.GroupID, &c.Amount, &c.ChargeDate, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Study charge not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve study charge", err)
	}
	return &c, nil
}

func (d Datasource) StudyChargeExists(ctx context.Context, studentID, groupID int64, chargeDate string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM daftar.study_charges
			WHERE student_id = $1 AND group_id = $2 AND charge_date = $3
		)
	`, studentID, groupID, chargeDate).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check study charge", err)
	}
	return exists, nil
}

func (d Datasource) DeleteStudyCharge(ctx context.Context, id int64) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM daftar.study_charges WHERE id = $1
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete study charge", err)
	}
	return requireAffected(result, "Study charge not found")
}

// DeleteStudyChargesByEnrollment removes every charge the enrollment
// generated and returns their sum so the caller can restore the balance.
func (d Datasource) DeleteStudyChargesByEnrollment(ctx context.Context, studentID, groupID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := d.Conn.QueryRowContext(ctx, `
		WITH removed AS (
			DELETE FROM daftar.study_charges
			WHERE student_id = $1 AND group_id = $2
			RETURNING amount
		)
		SELECT COALESCE(SUM(amount), 0) FROM removed
	`, studentID, groupID).Scan(&total)
	if err != nil {
		return decimal.Zero, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete study charges", err)
	}
	return total, nil
}

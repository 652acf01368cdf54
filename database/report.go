package database

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

// GetBalanceReport unions the four event sources for a student into one list
// ordered by date. Study charges always come back unflagged and without a
// comment, they have neither field. Running balances are filled in by the
// caller.
func (d Datasource) GetBalanceReport(ctx context.Context, studentID int64) ([]model.ReportEntry, error) {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Fetching balance report from db",
		trace.WithAttributes(attribute.Int64("student.id", studentID)))
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, date, reason, balance_change_type, total, mark_for_delete, comment_text FROM (
			SELECT id, payment_date AS date, 'PAYMENT' AS reason, payment_type AS balance_change_type,
			       amount AS total, mark_for_delete, COALESCE(comment, '') AS comment_text
			FROM daftar.payments
			WHERE student_id = $1 AND is_deleted = FALSE
			UNION ALL
			SELECT id, charge_date::timestamp AS date, 'STUDY', 'OUTCOME', amount, FALSE, ''
			FROM daftar.study_charges
			WHERE student_id = $1
			UNION ALL
			SELECT id, created_at AS date, 'BONUS', 'INCOME', amount, mark_for_delete, COALESCE(comment, '')
			FROM daftar.student_bonuses
			WHERE student_id = $1 AND is_deleted = FALSE
			UNION ALL
			SELECT id, created_at AS date, 'ADJUSTMENT',
			       CASE WHEN new_balance >= old_balance THEN 'INCOME' ELSE 'OUTCOME' END,
			       ABS(new_balance - old_balance), mark_for_delete, COALESCE(comment, '')
			FROM daftar.balance_adjustments
			WHERE student_id = $1 AND is_deleted = FALSE
		) report
		ORDER BY date
	`, studentID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve balance report", err)
	}
	defer rows.Close()

	entries := []model.ReportEntry{}
	for rows.Next() {
		e := model.ReportEntry{}
		err = rows.Scan(&e.ID, &e.Date, &e.Reason, &e.BalanceChangeType, &e.Total, &e.MarkForDelete, &e.CommentText)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan balance report row", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over balance report", err)
	}

	return entries, nil
}

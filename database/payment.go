package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/polica/daftar/internal/apierror"
	"github.com/polica/daftar/model"
)

func (d Datasource) RecordPayment(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Saving payment to db",
		trace.WithAttributes(attribute.Int64("student.id", p.StudentID)))
	defer span.End()

	p.CreatedAt = time.Now()

	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO daftar.payments (reference, student_id, payment_type, payment_method, amount, student_balance_after, payment_date, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, p.Reference, p.StudentID, p.PaymentType, p.PaymentMethod, p.Amount, p.StudentBalanceAfter, p.PaymentDate, nullString(p.Comment), p.CreatedAt).Scan(&p.ID)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return nil, apierror.NewAPIError(apierror.ErrConflict, "Payment with this reference already exists", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record payment", err)
	}

	return p, nil
}

func (d Datasource) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	p := model.Payment{}
	var comment sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, reference, student_id, payment_type, payment_method, amount, student_balance_after, payment_date, comment, mark_for_delete, created_at
		FROM daftar.payments
		WHERE id = $1 AND is_deleted = FALSE
	`, id).Scan(&p.ID, &p.Reference, &p.StudentID, &p.PaymentType, &p.PaymentMethod, &p.Amount, &p.StudentBalanceAfter, &p.PaymentDate, &comment, &p.MarkForDelete, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Payment not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve payment", err)
	}
	p.Comment = comment.String

	return &p, nil
}

// UpdatePaymentFlag sets the soft correction flag and comment, the only
// fields the ledger may change on an existing payment.
func (d Datasource) UpdatePaymentFlag(ctx context.Context, id int64, markForDelete bool, comment string) (*model.Payment, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.payments
		SET mark_for_delete = $2, comment = $3
		WHERE id = $1 AND is_deleted = FALSE
	`, id, markForDelete, nullString(comment))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payment", err)
	}
	if err := requireAffected(result, "Payment not found"); err != nil {
		return nil, err
	}
	return d.GetPayment(ctx, id)
}

func (d Datasource) DeletePayment(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("Ledger").Start(ctx, "Deleting payment from db",
		trace.WithAttributes(attribute.Int64("payment.id", id)))
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE daftar.payments SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete payment", err)
	}
	return requireAffected(result, "Payment not found")
}

// ApplyToDrawer adds delta to the drawer for the given method, creating the
// drawer row on first use.
func (d Datasource) ApplyToDrawer(ctx context.Context, method model.PaymentMethod, delta decimal.Decimal) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO daftar.cash_drawers (payment_method, amount)
		VALUES ($1, $2)
		ON CONFLICT (payment_method) DO UPDATE SET amount = daftar.cash_drawers.amount + $2
	`, method, delta)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update cash drawer", err)
	}
	return nil
}

func (d Datasource) GetDrawers(ctx context.Context) ([]model.CashDrawer, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, payment_method, amount FROM daftar.cash_drawers ORDER BY id
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve cash drawers", err)
	}
	defer rows.Close()

	drawers := []model.CashDrawer{}
	for rows.Next() {
		c := model.CashDrawer{}
		if err := rows.Scan(&c.ID, &c.PaymentMethod, &c.Amount); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan cash drawer data", err)
		}
		drawers = append(drawers, c)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over cash drawers", err)
	}

	return drawers, nil
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gym-management/internal/model"
)

// PaymentRepo persists the immutable payment ledger. Rows are only ever
// inserted (alongside member creation and renewal) or cascaded away
// when their member is deleted; there is no update path.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment within the caller's transaction and
// populates the generated ID and creation timestamp on the record.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payments (member_id, plan_id, created_by, amount, payment_date) VALUES (?,?,?,?,?)",
		p.MemberID, p.PlanID, p.CreatedBy, p.Amount, p.PaymentDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT created_at FROM payments WHERE id=?", p.ID).Scan(&p.CreatedAt)
}

// DeleteByMemberTx removes all payments of one member inside the
// caller's transaction. Used by the member-deletion cascade.
func (r *PaymentRepo) DeleteByMemberTx(ctx context.Context, tx *sql.Tx, memberID uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE member_id=?", memberID)
	return err
}

// ListByMember returns a member's payment history, newest first.
func (r *PaymentRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, member_id, plan_id, created_by, amount, payment_date, created_at
		 FROM payments WHERE member_id=? ORDER BY payment_date DESC, id DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		var payDate time.Time
		if err := rows.Scan(&p.ID, &p.MemberID, &p.PlanID, &p.CreatedBy, &p.Amount, &payDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.PaymentDate = payDate
		out = append(out, p)
	}
	return out, rows.Err()
}

package model

import "time"

// Payment is one collected amount against a member, referencing the
// plan that was active at payment time. CreatedBy is always the owning
// admin, even when a staff member performed the action. Payments are
// immutable once written; exactly one is created alongside each member
// registration and each membership renewal.
type Payment struct {
	ID          uint64    // payments.id
	MemberID    uint64    // payments.member_id
	PlanID      uint64    // payments.plan_id
	CreatedBy   uint64    // payments.created_by (owning admin)
	Amount      int64     // payments.amount
	PaymentDate time.Time // payments.payment_date
	CreatedAt   time.Time // payments.created_at
}

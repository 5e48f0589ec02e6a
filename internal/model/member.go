package model

import "time"

// Member represents a registered gym member as stored in the `members`
// table. A member always belongs to one admin (CreatedBy); when a staff
// account performed the registration, CreatedByStaff additionally
// records which one, while ownership still resolves to the staff's
// admin. Contact and email are unique across the whole system, not per
// owner.
//
// DueAmount is the running outstanding balance:
//
//	at registration: admission + plan.amount - collected - discount
//	on each renewal: due + newPlan.amount - newCollected
//
// The discount is applied once, at admission, and never again.
//
// Fields:
//  ID              – primary key identifier.
//  CreatedBy       – owning admin.
//  CreatedByStaff  – staff who registered the member (nil when the admin did).
//  Name            – member's display name.
//  Contact         – unique contact number.
//  Email           – unique email address.
//  Gender          – free-text gender label.
//  Batch           – training batch (e.g. "morning", "evening").
//  Address         – member's address.
//  PlanID          – currently active plan.
//  JoinDate        – start date of the current membership period.
//  AdmissionAmount – one-time admission fee charged at registration.
//  Discount        – one-time concession applied at registration.
//  CollectedAmount – total collected so far across all payments.
//  DueAmount       – outstanding balance.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Member struct {
	ID              uint64    // members.id
	CreatedBy       uint64    // members.created_by
	CreatedByStaff  *uint64   // members.created_by_staff (nullable)
	Name            string    // members.name
	Contact         string    // members.contact
	Email           string    // members.email
	Gender          string    // members.gender
	Batch           string    // members.batch
	Address         string    // members.address
	PlanID          uint64    // members.plan_id
	JoinDate        time.Time // members.join_date
	AdmissionAmount int64     // members.admission_amount
	Discount        int64     // members.discount
	CollectedAmount int64     // members.collected_amount
	DueAmount       int64     // members.due_amount
	CreatedAt       time.Time // members.created_at
	UpdatedAt       time.Time // members.updated_at
}

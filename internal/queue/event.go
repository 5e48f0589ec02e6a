// Package queue defines message payloads exchanged over the message broker.
package queue

// Payment kinds carried on PaymentRecordedEvent.
const (
	KindAdmission = "admission"
	KindRenewal   = "renewal"
)

// PaymentRecordedEvent is published after a payment row is committed,
// both for a member's founding payment and for renewals. It contains
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type PaymentRecordedEvent struct {
	PaymentID  uint64 `json:"payment_id"`
	MemberID   uint64 `json:"member_id"`
	MemberName string `json:"member_name"`
	PlanID     uint64 `json:"plan_id"`
	PlanName   string `json:"plan_name"`
	AdminID    uint64 `json:"admin_id"`
	Amount     int64  `json:"amount"`
	Kind       string `json:"kind"` // admission | renewal
	RecordedAt string `json:"recorded_at"`
}

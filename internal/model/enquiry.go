package model

import "time"

// EnquiryCategory classifies what a walk-in or caller asked about.
type EnquiryCategory string

const (
	EnquiryDiscussion EnquiryCategory = "discussion"
	EnquiryPayment    EnquiryCategory = "payment"
	EnquiryComplaint  EnquiryCategory = "complaint"
	EnquiryOther      EnquiryCategory = "other"
)

// ValidEnquiryCategory reports whether s is an accepted category.
func ValidEnquiryCategory(s string) bool {
	switch EnquiryCategory(s) {
	case EnquiryDiscussion, EnquiryPayment, EnquiryComplaint, EnquiryOther:
		return true
	}
	return false
}

// Enquiry statuses. The state machine is one-way: open → closed, and
// closed is terminal.
const (
	EnquiryOpen   = "open"
	EnquiryClosed = "closed"
)

// Enquiry records a prospect interaction with a follow-up date. It
// belongs to one admin and is optionally attributed to the staff who
// created it; UpdatedBy records who last changed the status.
//
// Fields:
//  ID           – primary key identifier.
//  CreatedBy    – owning admin.
//  StaffID      – staff who recorded the enquiry (nullable).
//  UpdatedBy    – actor who last updated the status (nullable).
//  Name         – prospect's name.
//  Contact      – prospect's contact number.
//  Remark       – free-text note.
//  FollowUpDate – when to follow up.
//  Category     – one of the EnquiryCategory values.
//  Status       – "open" or "closed".
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Enquiry struct {
	ID           uint64          // enquiries.id
	CreatedBy    uint64          // enquiries.created_by
	StaffID      *uint64         // enquiries.staff_id (nullable)
	UpdatedBy    *uint64         // enquiries.updated_by (nullable)
	Name         string          // enquiries.name
	Contact      string          // enquiries.contact
	Remark       string          // enquiries.remark
	FollowUpDate time.Time       // enquiries.follow_up_date
	Category     EnquiryCategory // enquiries.category
	Status       string          // enquiries.status
	CreatedAt    time.Time       // enquiries.created_at
	UpdatedAt    time.Time       // enquiries.updated_at
}

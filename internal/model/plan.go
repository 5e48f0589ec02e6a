package model

import "time"

// DurationType enumerates the units a plan duration can be expressed in.
type DurationType string

const (
	DurationDays   DurationType = "days"
	DurationWeeks  DurationType = "weeks"
	DurationMonths DurationType = "months"
	DurationYears  DurationType = "years"
)

// ValidDurationType reports whether s is one of the accepted duration units.
func ValidDurationType(s string) bool {
	switch DurationType(s) {
	case DurationDays, DurationWeeks, DurationMonths, DurationYears:
		return true
	}
	return false
}

// Plan is a membership plan definition owned by an admin. The tuple
// (created_by, name, duration_type, duration, amount) must be unique
// within an owner's catalog.
//
// Fields:
//  ID           – primary key identifier.
//  CreatedBy    – admin who owns this plan.
//  Name         – plan name (e.g. "Basic").
//  DurationType – unit of Duration (days/weeks/months/years).
//  Duration     – positive length of the plan in DurationType units.
//  Amount       – positive plan price in minor currency units.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Plan struct {
	ID           uint64       // plans.id
	CreatedBy    uint64       // plans.created_by
	Name         string       // plans.name
	DurationType DurationType // plans.duration_type
	Duration     uint32       // plans.duration
	Amount       int64        // plans.amount
	CreatedAt    time.Time    // plans.created_at
	UpdatedAt    time.Time    // plans.updated_at
}

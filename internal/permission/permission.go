// Package permission implements the tier-based gate consulted before
// every staff-initiated mutation. Tiers are strictly ordered, so
// "at least tier X" is a single integer comparison instead of a chain
// of string checks.
package permission

import (
	"errors"
	"strings"
)

// Tier is an ordered permission level held by a staff account.
type Tier int

const (
	// TierView allows read-only access; no mutations.
	TierView Tier = iota
	// TierViewAdd additionally allows creating records.
	TierViewAdd
	// TierViewAddUpdate additionally allows updating records.
	TierViewAddUpdate
	// TierAll allows everything, including deletes.
	TierAll
)

// Action is the class of a mutating operation.
type Action int

const (
	ActionAdd Action = iota
	ActionUpdate
	ActionDelete
)

// ErrUnknownTier is returned by ParseTier for strings outside the four
// recognized permission values.
var ErrUnknownTier = errors.New("unknown permission tier")

// tier strings as stored in staff.permission.
const (
	tierViewStr          = "view"
	tierViewAddStr       = "view+add"
	tierViewAddUpdateStr = "view+add+update"
	tierAllStr           = "all"
)

// ParseTier converts a stored permission string into a Tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case tierViewStr:
		return TierView, nil
	case tierViewAddStr:
		return TierViewAdd, nil
	case tierViewAddUpdateStr:
		return TierViewAddUpdate, nil
	case tierAllStr:
		return TierAll, nil
	}
	return TierView, ErrUnknownTier
}

// Valid reports whether s parses to a known tier.
func Valid(s string) bool {
	_, err := ParseTier(s)
	return err == nil
}

// String returns the stored form of the tier.
func (t Tier) String() string {
	switch t {
	case TierViewAdd:
		return tierViewAddStr
	case TierViewAddUpdate:
		return tierViewAddUpdateStr
	case TierAll:
		return tierAllStr
	}
	return tierViewStr
}

// Allows reports whether the tier permits the given action class.
// Add requires at least view+add, update at least view+add+update,
// delete requires all.
func (t Tier) Allows(a Action) bool {
	switch a {
	case ActionAdd:
		return t >= TierViewAdd
	case ActionUpdate:
		return t >= TierViewAddUpdate
	case ActionDelete:
		return t >= TierAll
	}
	return false
}

// Role distinguishes the two principal types that can initiate an
// operation.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleStaff Role = "Staff"
)

// Actor is the resolved initiator of a mutation: either an admin acting
// on its own resources or a staff account acting on behalf of its
// owning admin. Modeling both as one tagged value keeps handlers on a
// single code path instead of duplicated admin/staff branches.
type Actor struct {
	Role    Role
	ID      uint64
	ownerID uint64
	tier    Tier
}

// AdminActor builds an actor for an admin principal.
func AdminActor(id uint64) Actor {
	return Actor{Role: RoleAdmin, ID: id, ownerID: id, tier: TierAll}
}

// StaffActor builds an actor for a staff principal acting on behalf of
// ownerID with the given tier.
func StaffActor(id, ownerID uint64, tier Tier) Actor {
	return Actor{Role: RoleStaff, ID: id, ownerID: ownerID, tier: tier}
}

// Owner resolves the admin whose resources the actor operates on:
// the admin itself, or the staff's owning admin.
func (a Actor) Owner() uint64 { return a.ownerID }

// Tier returns the actor's effective permission tier. Admins are
// always TierAll.
func (a Actor) Tier() Tier { return a.tier }

// Can reports whether the actor may perform the action class. Admins
// bypass the gate entirely.
func (a Actor) Can(action Action) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.tier.Allows(action)
}

// StaffID returns the staff id to attribute a record to, or nil when
// the actor is an admin.
func (a Actor) StaffID() *uint64 {
	if a.Role != RoleStaff {
		return nil
	}
	id := a.ID
	return &id
}

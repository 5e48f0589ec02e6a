package model

import "time"

// Staff represents a delegated account acting on behalf of one admin.
// Each staff row belongs to exactly one admin via CreatedBy. The
// Permission column stores one of the four tier strings understood by
// the permission package ("view", "view+add", "view+add+update",
// "all"); Role is a free-text job title and carries no authorization
// meaning.
//
// Fields:
//  ID           – primary key identifier.
//  CreatedBy    – admin who owns this staff account.
//  Name         – staff member's display name.
//  Email        – unique email address.
//  Contact      – contact number.
//  PasswordHash – bcrypt hashed password.
//  Role         – free-text job title (e.g. "trainer", "receptionist").
//  Permission   – permission tier string.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Staff struct {
	ID           uint64    // staff.id
	CreatedBy    uint64    // staff.created_by (references admins.id)
	Name         string    // staff.name
	Email        string    // staff.email
	Contact      string    // staff.contact
	PasswordHash string    // staff.password_hash
	Role         string    // staff.role
	Permission   string    // staff.permission
	CreatedAt    time.Time // staff.created_at
	UpdatedAt    time.Time // staff.updated_at
}

package model

import "time"

// Admin represents a gym owner account as stored in the `admins`
// table. Admins are top-level resource owners: every staff account,
// plan, member, payment, expense and enquiry hangs off exactly one
// admin. The json tags are omitted here because these structs are
// primarily used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// The reset_* columns hold the password-reset challenge. They are
// transiently populated while a reset is in flight and cleared on
// success, expiry or lockout release. See the reset package for the
// state machine that drives them.
//
// Fields:
//  ID                  – primary key identifier.
//  Name                – owner's display name.
//  Email               – unique email address.
//  Contact             – unique contact number.
//  PasswordHash        – bcrypt hashed password.
//  GymName             – name of the gym this account manages.
//  Address             – gym address.
//  ResetOTPHash        – SHA-256 hex of the pending OTP ("" when none).
//  ResetOTPExpiresAt   – when the pending OTP expires (nil when none).
//  ResetOTPAttempts    – consecutive failed verification attempts.
//  ResetLockedUntil    – lockout deadline after too many failures (nil when not locked).
//  ResetTokenHash      – SHA-256 hex of the single-use reset token ("" when none).
//  ResetTokenExpiresAt – when the reset token expires (nil when none).
//  CreatedAt           – timestamp of creation.
//  UpdatedAt           – timestamp of last update.
type Admin struct {
	ID                  uint64     // admins.id
	Name                string     // admins.name
	Email               string     // admins.email
	Contact             string     // admins.contact
	PasswordHash        string     // admins.password_hash
	GymName             string     // admins.gym_name
	Address             string     // admins.address
	ResetOTPHash        string     // admins.reset_otp_hash
	ResetOTPExpiresAt   *time.Time // admins.reset_otp_expires_at (nullable)
	ResetOTPAttempts    int        // admins.reset_otp_attempts
	ResetLockedUntil    *time.Time // admins.reset_locked_until (nullable)
	ResetTokenHash      string     // admins.reset_token_hash
	ResetTokenExpiresAt *time.Time // admins.reset_token_expires_at (nullable)
	CreatedAt           time.Time  // admins.created_at
	UpdatedAt           time.Time  // admins.updated_at
}

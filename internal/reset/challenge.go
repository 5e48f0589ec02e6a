// Package reset implements the OTP password-reset challenge for admin
// accounts. A challenge moves through three states:
//
//	none → issued → (verified | expired | locked)
//
// The state is a single value type so that repositories can load and
// store it as a unit and invalid field combinations cannot be
// half-written. Plain codes are never kept; only their SHA-256 hash.
package reset

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Sentinel errors for verification outcomes.
var (
	// ErrNoChallenge means no OTP has been issued for the account.
	ErrNoChallenge = errors.New("no reset code issued")
	// ErrExpired means the issued OTP has passed its deadline. The
	// returned challenge is cleared and must be persisted.
	ErrExpired = errors.New("reset code expired")
	// ErrLocked means the account is locked out after too many wrong
	// attempts; retry after the lock window passes.
	ErrLocked = errors.New("too many attempts, account temporarily locked")
	// ErrMismatch means the supplied code was wrong. The returned
	// challenge carries the incremented attempt counter (and possibly
	// a fresh lock) and must be persisted.
	ErrMismatch = errors.New("incorrect reset code")
)

// Challenge mirrors the reset columns on the admins table. The zero
// value means no challenge is in flight.
type Challenge struct {
	CodeHash    string     // SHA-256 hex of the pending OTP, "" when none
	ExpiresAt   *time.Time // OTP deadline, nil when none
	Attempts    int        // consecutive failed verifications
	LockedUntil *time.Time // lockout deadline, nil when not locked
}

// None reports whether no OTP is currently issued.
func (ch Challenge) None() bool { return ch.CodeHash == "" }

// LockedAt reports whether the account is locked out at the given time.
func (ch Challenge) LockedAt(now time.Time) bool {
	return ch.LockedUntil != nil && now.Before(*ch.LockedUntil)
}

// Issue returns a fresh challenge for the given plain code. Issuing is
// refused with ErrLocked while a lock window is still open; a new code
// otherwise replaces any previous one and resets the attempt counter.
func (ch Challenge) Issue(now time.Time, code string, ttl time.Duration) (Challenge, error) {
	if ch.LockedAt(now) {
		return ch, ErrLocked
	}
	exp := now.Add(ttl)
	return Challenge{CodeHash: HashCode(code), ExpiresAt: &exp}, nil
}

// Verify checks the supplied code at the given time. On success the
// cleared challenge is returned with a nil error. On every other
// outcome the returned challenge reflects the state to persist:
// cleared on expiry, incremented (and possibly locked) on mismatch,
// unchanged when locked or absent.
func (ch Challenge) Verify(now time.Time, code string, maxAttempts int, lockFor time.Duration) (Challenge, error) {
	if ch.LockedAt(now) {
		return ch, ErrLocked
	}
	if ch.None() {
		return ch, ErrNoChallenge
	}
	if ch.ExpiresAt == nil || now.After(*ch.ExpiresAt) {
		return Challenge{}, ErrExpired
	}
	if HashCode(code) != ch.CodeHash {
		next := ch
		next.Attempts++
		if next.Attempts >= maxAttempts {
			until := now.Add(lockFor)
			return Challenge{LockedUntil: &until}, ErrMismatch
		}
		return next, ErrMismatch
	}
	return Challenge{}, nil
}

// HashCode returns the SHA-256 hex digest of a plain OTP code.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// GenerateCode returns a 6-digit numeric code from crypto/rand,
// zero-padded so leading zeros are possible.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

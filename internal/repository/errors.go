// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios, e.g.
// ErrConflict when deleting a plan that members are still subscribed to.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as deleting a plan with active
// members. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether the MySQL driver error is a unique key
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

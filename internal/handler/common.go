package handler // handler defines http handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/permission"
	"github.com/iliyamo/gym-management/internal/repository"
)

// dbTimeout bounds every database call issued from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id placed in echo.Context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// parseDate accepts the date formats clients send for joinDate,
// followUp and expense dates: plain dates or full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// resolveActor turns the createdBy/currentUser pair carried by mutating
// request bodies into a permission.Actor. For "Admin" the id must name
// an existing admin; for "Staff" the staff row is loaded and its
// permission string parsed, so the actor resolves ownership to the
// staff's admin. A missing principal or an unknown role yields an
// error the caller maps to 404/400.
func resolveActor(ctx context.Context, admins *repository.AdminRepo, staff *repository.StaffRepo, actorID uint64, role string) (permission.Actor, error) {
	switch permission.Role(strings.TrimSpace(role)) {
	case permission.RoleAdmin:
		if _, err := admins.GetByID(ctx, actorID); err != nil {
			return permission.Actor{}, err
		}
		return permission.AdminActor(actorID), nil
	case permission.RoleStaff:
		s, err := staff.GetByID(ctx, actorID)
		if err != nil {
			return permission.Actor{}, err
		}
		tier, err := permission.ParseTier(s.Permission)
		if err != nil {
			return permission.Actor{}, err
		}
		return permission.StaffActor(s.ID, s.CreatedBy, tier), nil
	}
	return permission.Actor{}, errors.New("currentUser must be Admin or Staff")
}

// actorError maps resolveActor failures onto the API error contract:
// unknown principals are 404, anything else is a 400 validation error.
func actorError(c echo.Context, err error) error {
	if err == sql.ErrNoRows ||
		errors.Is(err, repository.ErrAdminNotFound) ||
		errors.Is(err, repository.ErrStaffNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gym-management/internal/model"
)

// DashboardRepo computes the read-only rollups shown on the admin
// dashboard. Every query is scoped to one admin; callers are expected
// to tolerate individual rollup failures and zero the figure rather
// than fail the whole response.
type DashboardRepo struct {
	db *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{db: db} }

// TotalRevenue sums every payment recorded for the admin.
func (r *DashboardRepo) TotalRevenue(ctx context.Context, adminID uint64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM payments WHERE created_by=?", adminID).Scan(&total)
	return total.Int64, err
}

// TotalDues sums the outstanding balances across the admin's members.
func (r *DashboardRepo) TotalDues(ctx context.Context, adminID uint64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(due_amount) FROM members WHERE created_by=?", adminID).Scan(&total)
	return total.Int64, err
}

// MemberCount counts the admin's registered members.
func (r *DashboardRepo) MemberCount(ctx context.Context, adminID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM members WHERE created_by=?", adminID).Scan(&n)
	return n, err
}

// MonthExpenses sums the admin's expenses inside [from, to).
func (r *DashboardRepo) MonthExpenses(ctx context.Context, adminID uint64, from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount) FROM expenses WHERE created_by=? AND expense_date >= ? AND expense_date < ?",
		adminID, from, to).Scan(&total)
	return total.Int64, err
}

// EnquiryCounts returns open and closed enquiry counts.
func (r *DashboardRepo) EnquiryCounts(ctx context.Context, adminID uint64) (open, closed int, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM enquiries WHERE created_by=? GROUP BY status", adminID)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, err
		}
		if status == model.EnquiryClosed {
			closed = n
		} else {
			open = n
		}
	}
	return open, closed, rows.Err()
}

// ExpiringMember is one row of the expiring-subscriptions rollup.
type ExpiringMember struct {
	MemberID  uint64 `json:"member_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
	PlanName  string `json:"plan_name"`
	ExpiresOn string `json:"expires_on"`
}

// ExpiringWithin scans the admin's members and returns those whose
// current period ends within the next `days` days. Expiry is join date
// plus plan length; months and years use calendar arithmetic, days and
// weeks plain day counts.
func (r *DashboardRepo) ExpiringWithin(ctx context.Context, adminID uint64, days int, now time.Time) ([]ExpiringMember, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.name, m.contact, m.join_date, p.name, p.duration_type, p.duration
		 FROM members m JOIN plans p ON p.id = m.plan_id
		 WHERE m.created_by=?`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	horizon := now.AddDate(0, 0, days)
	out := make([]ExpiringMember, 0)
	for rows.Next() {
		var (
			em       ExpiringMember
			joinDate time.Time
			durType  string
			duration int
		)
		if err := rows.Scan(&em.MemberID, &em.Name, &em.Contact, &joinDate, &em.PlanName, &durType, &duration); err != nil {
			return nil, err
		}
		var expiry time.Time
		switch model.DurationType(durType) {
		case model.DurationMonths:
			expiry = joinDate.AddDate(0, duration, 0)
		case model.DurationYears:
			expiry = joinDate.AddDate(duration, 0, 0)
		case model.DurationWeeks:
			expiry = joinDate.AddDate(0, 0, duration*7)
		default:
			expiry = joinDate.AddDate(0, 0, duration)
		}
		if expiry.After(now) && !expiry.After(horizon) {
			em.ExpiresOn = expiry.UTC().Format("2006-01-02")
			out = append(out, em)
		}
	}
	return out, rows.Err()
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/repository"
)

// DashboardHandler serves the back-office overview for one gym. The
// rollups are independent reads; a failing figure is reported as zero
// instead of failing the whole response, so the dashboard stays useful
// when one table is momentarily unreadable.
type DashboardHandler struct {
	Dash *repository.DashboardRepo
}

func NewDashboardHandler(d *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Dash: d}
}

type dashboardResp struct {
	TotalRevenue    int64                       `json:"totalRevenue"`
	TotalDues       int64                       `json:"totalDues"`
	MemberCount     int                         `json:"memberCount"`
	MonthExpenses   int64                       `json:"monthExpenses"`
	OpenEnquiries   int                         `json:"openEnquiries"`
	ClosedEnquiries int                         `json:"closedEnquiries"`
	ExpiringSoon    []repository.ExpiringMember `json:"expiringSoon"`
}

// Overview handles GET /dashboard/:adminId.
func (h *DashboardHandler) Overview(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var resp dashboardResp
	if v, err := h.Dash.TotalRevenue(ctx, adminID); err == nil {
		resp.TotalRevenue = v
	}
	if v, err := h.Dash.TotalDues(ctx, adminID); err == nil {
		resp.TotalDues = v
	}
	if v, err := h.Dash.MemberCount(ctx, adminID); err == nil {
		resp.MemberCount = v
	}
	if v, err := h.Dash.MonthExpenses(ctx, adminID, monthStart, monthEnd); err == nil {
		resp.MonthExpenses = v
	}
	if open, closed, err := h.Dash.EnquiryCounts(ctx, adminID); err == nil {
		resp.OpenEnquiries = open
		resp.ClosedEnquiries = closed
	}
	resp.ExpiringSoon = []repository.ExpiringMember{}
	if rows, err := h.Dash.ExpiringWithin(ctx, adminID, 7, now); err == nil {
		resp.ExpiringSoon = rows
	}

	return c.JSON(http.StatusOK, resp)
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/permission"
	"github.com/iliyamo/gym-management/internal/repository"
)

// PlanHandler manages an admin's plan catalog.
type PlanHandler struct {
	Admins *repository.AdminRepo
	Staff  *repository.StaffRepo
	Plans  *repository.PlanRepo
}

func NewPlanHandler(a *repository.AdminRepo, s *repository.StaffRepo, p *repository.PlanRepo) *PlanHandler {
	return &PlanHandler{Admins: a, Staff: s, Plans: p}
}

type addPlanReq struct {
	Name         string `json:"name"`
	DurationType string `json:"durationType"`
	Duration     uint32 `json:"duration"`
	Amount       int64  `json:"amount"`
	CreatedBy    uint64 `json:"createdBy"`
	CurrentUser  string `json:"currentUser"`
}

type deletePlanReq struct {
	PlanID      uint64 `json:"planId"`
	UserID      uint64 `json:"userId"`
	CurrentUser string `json:"currentUser"`
}

type planPart struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	DurationType string `json:"durationType"`
	Duration     uint32 `json:"duration"`
	Amount       int64  `json:"amount"`
	CreatedBy    uint64 `json:"createdBy"`
}

func toPlanPart(p model.Plan) planPart {
	return planPart{
		ID: p.ID, Name: p.Name, DurationType: string(p.DurationType),
		Duration: p.Duration, Amount: p.Amount, CreatedBy: p.CreatedBy,
	}
}

// Add handles POST /plan/addplan. An identical tuple within the same
// owner's catalog is rejected as a duplicate.
func (h *PlanHandler) Add(c echo.Context) error {
	var req addPlanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.CreatedBy == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/createdBy required"})
	}
	if !model.ValidDurationType(req.DurationType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "durationType must be days, weeks, months or years"})
	}
	if req.Duration == 0 || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "duration and amount must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.CreatedBy, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionAdd) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	plan := model.Plan{
		CreatedBy:    actor.Owner(),
		Name:         req.Name,
		DurationType: model.DurationType(req.DurationType),
		Duration:     req.Duration,
		Amount:       req.Amount,
	}
	if err := h.Plans.Create(ctx, &plan); err != nil {
		if err == repository.ErrPlanExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "identical plan already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create plan failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "plan created", "plan": toPlanPart(plan)})
}

// Delete handles DELETE /plan/deletePlan. A plan still referenced by
// members cannot be removed.
func (h *PlanHandler) Delete(c echo.Context) error {
	var req deletePlanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PlanID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "planId/userId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.UserID, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionDelete) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	if err := h.Plans.DeleteByIDAndOwner(ctx, req.PlanID, actor.Owner()); err != nil {
		switch err {
		case repository.ErrPlanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "plan is still assigned to members"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete plan failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "plan deleted", "deletedPlanId": req.PlanID})
}

// List handles GET /plan/getPlans/:adminId.
func (h *PlanHandler) List(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Plans.ListByAdmin(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]planPart, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPlanPart(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

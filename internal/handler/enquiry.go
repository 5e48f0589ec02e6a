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

// EnquiryHandler drives the prospect enquiry workflow. Enquiries are
// created open and may only move open to closed; a closed enquiry
// accepts no further status changes.
type EnquiryHandler struct {
	Admins    *repository.AdminRepo
	Staff     *repository.StaffRepo
	Enquiries *repository.EnquiryRepo
}

func NewEnquiryHandler(a *repository.AdminRepo, s *repository.StaffRepo, e *repository.EnquiryRepo) *EnquiryHandler {
	return &EnquiryHandler{Admins: a, Staff: s, Enquiries: e}
}

type addEnquiryReq struct {
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Remark      string `json:"remark"`
	FollowUp    string `json:"followUp"`
	Category    string `json:"category"`
	CreatedBy   uint64 `json:"createdBy"`
	CurrentUser string `json:"currentUser"`
}

type updateEnquiryReq struct {
	EnquiryID   uint64 `json:"enquiryId"`
	Status      string `json:"status"`
	UserID      uint64 `json:"userId"`
	CurrentUser string `json:"currentUser"`
}

type deleteEnquiryReq struct {
	EnquiryID   uint64 `json:"enquiryId"`
	UserID      uint64 `json:"userId"`
	CurrentUser string `json:"currentUser"`
}

type enquiryPart struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Contact   string  `json:"contact"`
	Remark    string  `json:"remark,omitempty"`
	FollowUp  string  `json:"followUp"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	CreatedBy uint64  `json:"createdBy"`
	StaffID   *uint64 `json:"staffId,omitempty"`
	UpdatedBy *uint64 `json:"updatedBy,omitempty"`
}

func toEnquiryPart(e model.Enquiry) enquiryPart {
	return enquiryPart{
		ID: e.ID, Name: e.Name, Contact: e.Contact, Remark: e.Remark,
		FollowUp: e.FollowUpDate.UTC().Format("2006-01-02"),
		Category: string(e.Category), Status: e.Status,
		CreatedBy: e.CreatedBy, StaffID: e.StaffID, UpdatedBy: e.UpdatedBy,
	}
}

// Add handles POST /enquiry/addEnquiry. An equivalent enquiry that is
// still open counts as a duplicate.
func (h *EnquiryHandler) Add(c echo.Context) error {
	var req addEnquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Contact = strings.TrimSpace(req.Contact)
	if req.Name == "" || req.Contact == "" || req.FollowUp == "" || req.CreatedBy == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/contact/followUp/createdBy required"})
	}
	if !model.ValidEnquiryCategory(req.Category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown enquiry category"})
	}
	followUp, err := parseDate(req.FollowUp)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid followUp date"})
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

	enq := model.Enquiry{
		CreatedBy:    actor.Owner(),
		StaffID:      actor.StaffID(),
		Name:         req.Name,
		Contact:      req.Contact,
		Remark:       req.Remark,
		FollowUpDate: followUp,
		Category:     model.EnquiryCategory(req.Category),
	}
	if err := h.Enquiries.Create(ctx, &enq); err != nil {
		if err == repository.ErrEnquiryExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "equivalent open enquiry already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create enquiry failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "enquiry created", "enquiry": toEnquiryPart(enq)})
}

// Update handles PATCH /enquiry/updateEnquiry, the status transition.
// Closed enquiries are terminal and yield a conflict.
func (h *EnquiryHandler) Update(c echo.Context) error {
	var req updateEnquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EnquiryID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enquiryId/userId required"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != model.EnquiryOpen && status != model.EnquiryClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be open or closed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.UserID, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionUpdate) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	if err := h.Enquiries.UpdateStatus(ctx, req.EnquiryID, actor.Owner(), status, actor.ID); err != nil {
		switch err {
		case repository.ErrEnquiryNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enquiry not found"})
		case repository.ErrEnquiryClosed:
			return c.JSON(http.StatusConflict, echo.Map{"error": "enquiry is closed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update enquiry failed"})
	}

	enq, err := h.Enquiries.GetByIDForOwner(ctx, req.EnquiryID, actor.Owner())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load enquiry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "enquiry updated", "enquiry": toEnquiryPart(enq)})
}

// Delete handles DELETE /enquiry/deleteEnquiry.
func (h *EnquiryHandler) Delete(c echo.Context) error {
	var req deleteEnquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EnquiryID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enquiryId/userId required"})
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

	if err := h.Enquiries.DeleteByIDAndOwner(ctx, req.EnquiryID, actor.Owner()); err != nil {
		if err == repository.ErrEnquiryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "enquiry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete enquiry failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "enquiry deleted", "deletedEnquiryId": req.EnquiryID})
}

// List handles GET /enquiry/getEnquiries/:creatorId, open enquiries first.
func (h *EnquiryHandler) List(c echo.Context) error {
	creatorID, err := parseIDParam(c, "creatorId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Enquiries.ListByAdmin(ctx, creatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]enquiryPart, 0, len(rows))
	for _, e := range rows {
		out = append(out, toEnquiryPart(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"enquiries": out})
}

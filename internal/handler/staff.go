package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/config"
	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/permission"
	"github.com/iliyamo/gym-management/internal/repository"
	"github.com/iliyamo/gym-management/internal/utils"
)

// StaffHandler covers staff account management and staff sessions.
// Creating, updating and deleting staff accounts is reserved to the
// owning admin; login is open to the staff themselves.
type StaffHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
	Staff  *repository.StaffRepo
	Tokens *repository.TokenRepo
}

func NewStaffHandler(cfg config.Config, a *repository.AdminRepo, s *repository.StaffRepo, t *repository.TokenRepo) *StaffHandler {
	return &StaffHandler{Cfg: cfg, Admins: a, Staff: s, Tokens: t}
}

// ----- DTOs -----

type staffSignupReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
	Password   string `json:"password"`
	Role       string `json:"role"`       // free-text job title
	Permission string `json:"permission"` // view | view+add | view+add+update | all
	CreatedBy  uint64 `json:"createdBy"`  // owning admin id
}

type staffUpdateReq struct {
	StaffID    uint64 `json:"staffId"`
	Name       string `json:"name"`
	Contact    string `json:"contact"`
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

type staffPart struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Contact    string `json:"contact"`
	Role       string `json:"role"`
	Permission string `json:"permission"`
	CreatedBy  uint64 `json:"createdBy"`
}

func toStaffPart(s model.Staff) staffPart {
	return staffPart{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Contact:    s.Contact,
		Role:       s.Role,
		Permission: s.Permission,
		CreatedBy:  s.CreatedBy,
	}
}

type staffAuthResp struct {
	Staff   staffPart `json:"staff"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup: create a staff account under an existing admin.
func (h *StaffHandler) Signup(c echo.Context) error {
	var req staffSignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.CreatedBy == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password/createdBy required"})
	}
	if !permission.Valid(req.Permission) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission value"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Admins.GetByID(ctx, req.CreatedBy); err != nil {
		if err == repository.ErrAdminNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	id, err := h.Staff.Create(ctx, req.CreatedBy, req.Name, req.Email, req.Contact, req.Password, req.Role, req.Permission, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrStaffExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create staff failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "staff created",
		"staff": staffPart{
			ID: id, Name: req.Name, Email: req.Email, Contact: req.Contact,
			Role: req.Role, Permission: req.Permission, CreatedBy: req.CreatedBy,
		},
	})
}

// Login: verify staff credentials and return a token pair.
func (h *StaffHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Staff.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrStaffNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(s.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, s.ID, "STAFF", h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, repository.SubjectStaff, s.ID, utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, staffAuthResp{
		Staff:   toStaffPart(s),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Update: change name, contact, job title or permission tier of a staff
// account. Omitted fields keep their stored values. Only the owning
// admin may call this; the admin id comes from
// the verified access token, so the update is scoped to staff rows the
// caller actually owns.
func (h *StaffHandler) Update(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req staffUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staffId required"})
	}
	if req.Permission != "" && !permission.Valid(req.Permission) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission value"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Staff.Update(ctx, adminID, req.StaffID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Contact), req.Role, req.Permission); err != nil {
		if err == repository.ErrStaffNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update staff failed"})
	}

	s, err := h.Staff.GetByID(ctx, req.StaffID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load staff failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "staff updated", "staff": toStaffPart(s)})
}

// List returns all staff accounts belonging to one admin.
func (h *StaffHandler) List(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	rows, err := h.Staff.ListByAdmin(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]staffPart, 0, len(rows))
	for _, s := range rows {
		out = append(out, toStaffPart(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"staff": out})
}

// Delete removes a staff account and revokes its sessions. Admin only;
// scoped to the caller's own staff.
func (h *StaffHandler) Delete(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		StaffID uint64 `json:"staffId"`
	}
	if err := c.Bind(&req); err != nil || req.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staffId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Staff.DeleteByIDAndAdmin(ctx, req.StaffID, adminID); err != nil {
		if err == repository.ErrStaffNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "staff not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete staff failed"})
	}
	_ = h.Tokens.RevokeAllFor(ctx, repository.SubjectStaff, req.StaffID)

	return c.JSON(http.StatusOK, echo.Map{"message": "staff deleted", "deletedStaffId": req.StaffID})
}

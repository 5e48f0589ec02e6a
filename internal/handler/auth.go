package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/config"
	"github.com/iliyamo/gym-management/internal/repository"
	"github.com/iliyamo/gym-management/internal/utils"
)

// AuthHandler bundles dependencies for admin auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, a *repository.AdminRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Admins: a, Tokens: t}
}

// ----- DTOs -----

type adminSignupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Contact  string `json:"contact"`
	Password string `json:"password"`
	GymName  string `json:"gymName"`
	Address  string `json:"address"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type adminPart struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	GymName string `json:"gymName"`
}
type adminAuthResp struct {
	Admin   adminPart `json:"admin"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup: create the gym owner account and return tokens immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req adminSignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Contact = strings.TrimSpace(req.Contact)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Contact == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/contact/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Admins.Create(ctx, req.Name, req.Email, req.Contact, req.Password, req.GymName, req.Address, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrAdminExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email or contact already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create admin failed"})
	}

	access, refresh, err := h.issuePair(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, adminAuthResp{
		Admin:   adminPart{ID: id, Name: req.Name, Email: req.Email, GymName: req.GymName},
		Access:  access,
		Refresh: refresh,
	})
}

// Login: verify credentials and return a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
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

	a, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrAdminNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, refresh, err := h.issuePair(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, adminAuthResp{
		Admin:   adminPart{ID: a.ID, Name: a.Name, Email: a.Email, GymName: a.GymName},
		Access:  access,
		Refresh: refresh,
	})
}

// Refresh: validate by hash, revoke the old token, issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashTokenRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	adminID, err := h.Tokens.ValidateRefresh(ctx, repository.SubjectAdmin, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	a, err := h.Admins.GetByID(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load admin failed"})
	}

	access, refresh, err := h.issuePair(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, adminAuthResp{
		Admin:   adminPart{ID: a.ID, Name: a.Name, Email: a.Email, GymName: a.GymName},
		Access:  access,
		Refresh: refresh,
	})
}

// Logout: revoke the presented refresh token, or, when called with a
// valid bearer and no body token, revoke every session of the admin.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashTokenRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, repository.SubjectAdmin, hash); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	uid, err := getUserID(c)
	if err != nil || uid == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide refresh_token or a bearer token"})
	}
	if err := h.Tokens.RevokeAllFor(ctx, repository.SubjectAdmin, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// issuePair creates and persists an access/refresh pair for an admin.
func (h *AuthHandler) issuePair(ctx context.Context, adminID uint64) (tokenPart, tokenPart, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, adminID, "ADMIN", h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, repository.SubjectAdmin, adminID, utils.HashTokenRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenPart{}, tokenPart{}, err
	}
	return tokenPart{Token: access.Token, Expires: access.Exp},
		tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, nil
}

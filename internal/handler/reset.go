package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/config"
	"github.com/iliyamo/gym-management/internal/mailer"
	"github.com/iliyamo/gym-management/internal/repository"
	"github.com/iliyamo/gym-management/internal/reset"
	"github.com/iliyamo/gym-management/internal/utils"
)

// ResetHandler implements the admin password-reset flow: sendOtp emails
// a short-lived 6-digit code, verifyOtp trades a correct code for a
// single-use reset token, and updatePassword consumes that token. The
// state machine itself lives in the reset package; this handler only
// loads, advances and persists it.
type ResetHandler struct {
	Cfg    config.Config
	Admins *repository.AdminRepo
	Tokens *repository.TokenRepo
	Mail   *mailer.Mailer
}

func NewResetHandler(cfg config.Config, a *repository.AdminRepo, t *repository.TokenRepo, m *mailer.Mailer) *ResetHandler {
	return &ResetHandler{Cfg: cfg, Admins: a, Tokens: t, Mail: m}
}

type sendOtpReq struct {
	Email string `json:"email"`
}
type verifyOtpReq struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}
type updatePasswordReq struct {
	AdminID    uint64 `json:"adminId"`
	ResetToken string `json:"resetToken"`
	Password   string `json:"password"`
}

// SendOTP handles POST /admin/sendOtp.
func (h *ResetHandler) SendOTP(c echo.Context) error {
	var req sendOtpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrAdminNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	code, err := reset.GenerateCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
	}
	now := time.Now().UTC()
	ch, err := repository.ResetChallenge(a).Issue(now, code, time.Duration(h.Cfg.OTPExpireMin)*time.Minute)
	if err != nil {
		if err == reset.ErrLocked {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts, try again later"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	if err := h.Admins.SaveResetChallenge(ctx, a.ID, ch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save code failed"})
	}

	// The plaintext code leaves the system only through this mail.
	if err := h.Mail.SendResetCode(a.Email, code, h.Cfg.OTPExpireMin); err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "sending mail failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "otp sent"})
}

// VerifyOTP handles POST /admin/verifyOtp. A correct code clears the
// challenge and returns the admin id together with a single-use reset
// token for the password update call.
func (h *ResetHandler) VerifyOTP(c echo.Context) error {
	var req verifyOtpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Otp = strings.TrimSpace(req.Otp)
	if req.Email == "" || req.Otp == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/otp required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrAdminNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "admin not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	next, verr := repository.ResetChallenge(a).Verify(now, req.Otp,
		h.Cfg.OTPMaxAttempts, time.Duration(h.Cfg.OTPLockMin)*time.Minute)
	// Persist the advanced state regardless of the verdict; attempt
	// counters and lockouts must survive the request.
	if err := h.Admins.SaveResetChallenge(ctx, a.ID, next); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save state failed"})
	}
	if verr != nil {
		switch verr {
		case reset.ErrLocked:
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts, try again later"})
		case reset.ErrNoChallenge:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no otp requested"})
		case reset.ErrExpired:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "otp expired, request a new one"})
		case reset.ErrMismatch:
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect otp"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
	}

	token, err := utils.NewResetToken(h.Cfg.ResetTokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue reset token failed"})
	}
	if err := h.Admins.SaveResetToken(ctx, a.ID, utils.HashTokenRaw(token.Raw), token.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save reset token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "otp verified",
		"adminId":    a.ID,
		"resetToken": token.Raw,
	})
}

// UpdatePassword handles PATCH /admin/updatePassword. The reset token
// is consumed atomically, so a second call with the same token fails
// even under concurrent submission. All refresh tokens of the admin
// are revoked after the change.
func (h *ResetHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AdminID == 0 || strings.TrimSpace(req.ResetToken) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "adminId/resetToken/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Admins.ConsumeResetToken(ctx, req.AdminID, utils.HashTokenRaw(strings.TrimSpace(req.ResetToken))); err != nil {
		if err == repository.ErrResetTokenInvalid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "reset token invalid or expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify reset token failed"})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}
	if err := h.Admins.UpdatePassword(ctx, req.AdminID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	_ = h.Tokens.RevokeAllFor(ctx, repository.SubjectAdmin, req.AdminID)

	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

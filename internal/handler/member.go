package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/ledger"
	"github.com/iliyamo/gym-management/internal/model"
	"github.com/iliyamo/gym-management/internal/permission"
	"github.com/iliyamo/gym-management/internal/queue"
	"github.com/iliyamo/gym-management/internal/repository"
	queue_publisher "github.com/iliyamo/gym-management/internal/service"
)

// MemberHandler implements the membership ledger: registration with a
// founding payment, renewals, deletion and the read views. The two
// ledger writes of registration and renewal run inside one database
// transaction so a member row never exists without its payment.
type MemberHandler struct {
	Admins   *repository.AdminRepo
	Staff    *repository.StaffRepo
	Members  *repository.MemberRepo
	Plans    *repository.PlanRepo
	Payments *repository.PaymentRepo
}

func NewMemberHandler(a *repository.AdminRepo, s *repository.StaffRepo, m *repository.MemberRepo, p *repository.PlanRepo, pay *repository.PaymentRepo) *MemberHandler {
	if a == nil || s == nil || m == nil || p == nil || pay == nil {
		panic("nil repository passed to NewMemberHandler")
	}
	return &MemberHandler{Admins: a, Staff: s, Members: m, Plans: p, Payments: pay}
}

// ----- DTOs -----

type addMemberReq struct {
	Name            string `json:"name"`
	Contact         string `json:"contact"`
	Email           string `json:"email"`
	Gender          string `json:"gender"`
	Batch           string `json:"batch"`
	Address         string `json:"address"`
	Plan            uint64 `json:"plan"`
	JoinDate        string `json:"joinDate"`
	AdmissionAmount int64  `json:"admissionAmount"`
	Discount        int64  `json:"discount"`
	CollectedAmount int64  `json:"collectedAmount"`
	CreatedBy       uint64 `json:"createdBy"`
	CurrentUser     string `json:"currentUser"` // Admin | Staff
}

type renewMemberReq struct {
	MemberID        uint64 `json:"memberId"`
	Plan            uint64 `json:"plan"`
	Batch           string `json:"batch"`
	JoinDate        string `json:"joinDate"`
	CollectedAmount int64  `json:"collectedAmount"`
	CreatedBy       uint64 `json:"createdBy"`
	CurrentUser     string `json:"currentUser"`
}

type deleteMemberReq struct {
	MemberID    uint64 `json:"memberId"`
	UserID      uint64 `json:"userId"`
	CurrentUser string `json:"currentUser"`
}

type memberPart struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Contact         string  `json:"contact"`
	Email           string  `json:"email"`
	Gender          string  `json:"gender"`
	Batch           string  `json:"batch"`
	Address         string  `json:"address"`
	PlanID          uint64  `json:"planId"`
	JoinDate        string  `json:"joinDate"`
	AdmissionAmount int64   `json:"admissionAmount"`
	Discount        int64   `json:"discount"`
	CollectedAmount int64   `json:"collectedAmount"`
	DueAmount       int64   `json:"dueAmount"`
	CreatedBy       uint64  `json:"createdBy"`
	CreatedByStaff  *uint64 `json:"createdByStaff,omitempty"`
}

type paymentPart struct {
	ID          uint64 `json:"id"`
	MemberID    uint64 `json:"memberId"`
	PlanID      uint64 `json:"planId"`
	Amount      int64  `json:"amount"`
	PaymentDate string `json:"paymentDate"`
}

func toMemberPart(m model.Member) memberPart {
	return memberPart{
		ID: m.ID, Name: m.Name, Contact: m.Contact, Email: m.Email,
		Gender: m.Gender, Batch: m.Batch, Address: m.Address,
		PlanID: m.PlanID, JoinDate: m.JoinDate.UTC().Format("2006-01-02"),
		AdmissionAmount: m.AdmissionAmount, Discount: m.Discount,
		CollectedAmount: m.CollectedAmount, DueAmount: m.DueAmount,
		CreatedBy: m.CreatedBy, CreatedByStaff: m.CreatedByStaff,
	}
}

func toPaymentPart(p model.Payment) paymentPart {
	return paymentPart{
		ID: p.ID, MemberID: p.MemberID, PlanID: p.PlanID,
		Amount: p.Amount, PaymentDate: p.PaymentDate.UTC().Format("2006-01-02"),
	}
}

// resolvePlanForOwner loads a plan and hides plans of other gyms behind
// a not-found, matching how all owner-scoped reads behave.
func (h *MemberHandler) resolvePlanForOwner(c echo.Context, planID, ownerID uint64) (model.Plan, bool) {
	plan, err := h.Plans.GetByID(c.Request().Context(), planID)
	if err != nil || plan.CreatedBy != ownerID {
		_ = c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		return model.Plan{}, false
	}
	return plan, true
}

// Add handles POST /member/addMember: validation, uniqueness on contact
// OR email, plan and actor resolution, due computation, then the member
// insert and its founding payment in one transaction. A failed payment
// write rolls the member back and surfaces as a 500.
func (h *MemberHandler) Add(c echo.Context) error {
	var req addMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Contact == "" || req.Email == "" || req.Plan == 0 || req.CreatedBy == 0 || req.JoinDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/contact/email/plan/joinDate/createdBy required"})
	}
	if req.AdmissionAmount < 0 || req.Discount < 0 || req.CollectedAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amounts must not be negative"})
	}
	joinDate, err := parseDate(req.JoinDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid joinDate"})
	}

	ctx := c.Request().Context()
	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.CreatedBy, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionAdd) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	plan, ok := h.resolvePlanForOwner(c, req.Plan, actor.Owner())
	if !ok {
		return nil
	}

	exists, err := h.Members.ExistsByContactOrEmail(ctx, req.Contact, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "contact or email already registered"})
	}

	due := ledger.AdmissionDue(req.AdmissionAmount, plan.Amount, req.CollectedAmount, req.Discount)

	member := model.Member{
		CreatedBy:       actor.Owner(),
		CreatedByStaff:  actor.StaffID(),
		Name:            req.Name,
		Contact:         req.Contact,
		Email:           req.Email,
		Gender:          req.Gender,
		Batch:           req.Batch,
		Address:         req.Address,
		PlanID:          plan.ID,
		JoinDate:        joinDate,
		AdmissionAmount: req.AdmissionAmount,
		Discount:        req.Discount,
		CollectedAmount: req.CollectedAmount,
		DueAmount:       due,
	}

	tx, err := h.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Members.CreateTx(ctx, tx, &member); err != nil {
		if err == repository.ErrMemberExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "contact or email already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
	}
	payment := model.Payment{
		MemberID:    member.ID,
		PlanID:      plan.ID,
		CreatedBy:   actor.Owner(),
		Amount:      req.CollectedAmount,
		PaymentDate: joinDate,
	}
	if err := h.Payments.CreateTx(ctx, tx, &payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment save failed, member registration rolled back"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.publishPayment(payment, member.Name, plan.Name, queue.KindAdmission)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "member registered",
		"data": echo.Map{
			"member":  toMemberPart(member),
			"plan":    toPlanPart(plan),
			"payment": toPaymentPart(payment),
		},
	})
}

// Renew handles POST /member/updateMembership. The new due carries the
// previous balance forward and does not re-apply the admission
// discount. Staff need the full permission tier for renewals.
func (h *MemberHandler) Renew(c echo.Context) error {
	var req renewMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MemberID == 0 || req.Plan == 0 || req.CreatedBy == 0 || req.JoinDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "memberId/plan/joinDate/createdBy required"})
	}
	if req.CollectedAmount < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amounts must not be negative"})
	}
	joinDate, err := parseDate(req.JoinDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid joinDate"})
	}

	ctx := c.Request().Context()
	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.CreatedBy, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if actor.Role == permission.RoleStaff && actor.Tier() < permission.TierAll {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	member, err := h.Members.GetByIDForOwner(ctx, req.MemberID, actor.Owner())
	if err != nil {
		if err == repository.ErrMemberNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	plan, ok := h.resolvePlanForOwner(c, req.Plan, actor.Owner())
	if !ok {
		return nil
	}

	batch := req.Batch
	if batch == "" {
		batch = member.Batch
	}
	collectedTotal := member.CollectedAmount + req.CollectedAmount
	due := ledger.RenewalDue(member.DueAmount, plan.Amount, req.CollectedAmount)

	tx, err := h.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Members.RenewTx(ctx, tx, member.ID, plan.ID, batch, joinDate, collectedTotal, due, actor.StaffID()); err != nil {
		if err == repository.ErrMemberNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "renew member failed"})
	}
	payment := model.Payment{
		MemberID:    member.ID,
		PlanID:      plan.ID,
		CreatedBy:   actor.Owner(),
		Amount:      req.CollectedAmount,
		PaymentDate: joinDate,
	}
	if err := h.Payments.CreateTx(ctx, tx, &payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment save failed, renewal rolled back"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	member.PlanID = plan.ID
	member.Batch = batch
	member.JoinDate = joinDate
	member.CollectedAmount = collectedTotal
	member.DueAmount = due
	member.CreatedByStaff = actor.StaffID()

	h.publishPayment(payment, member.Name, plan.Name, queue.KindRenewal)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "membership renewed",
		"data": echo.Map{
			"member":  toMemberPart(member),
			"plan":    toPlanPart(plan),
			"payment": toPaymentPart(payment),
		},
	})
}

// Delete handles DELETE /member/deleteMember: payments first, then the
// member row, in one transaction. Staff need the full tier.
func (h *MemberHandler) Delete(c echo.Context) error {
	var req deleteMemberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MemberID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "memberId/userId required"})
	}

	ctx := c.Request().Context()
	actor, err := resolveActor(ctx, h.Admins, h.Staff, req.UserID, req.CurrentUser)
	if err != nil {
		return actorError(c, err)
	}
	if !actor.Can(permission.ActionDelete) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "insufficient permission"})
	}

	member, err := h.Members.GetByIDForOwner(ctx, req.MemberID, actor.Owner())
	if err != nil {
		if err == repository.ErrMemberNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Members.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Payments.DeleteByMemberTx(ctx, tx, member.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete payments failed"})
	}
	if err := h.Members.DeleteTx(ctx, tx, member.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete member failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"deletedMemberId":   member.ID,
		"deletedMemberName": member.Name,
	})
}

// List handles GET /member/getMembers/:adminId.
func (h *MemberHandler) List(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rows, err := h.Members.ListByAdmin(c.Request().Context(), adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": rows})
}

// GetByID handles GET /member/getMemberById/:adminId/:id and includes
// the member's payment history.
func (h *MemberHandler) GetByID(c echo.Context) error {
	adminID, err := parseIDParam(c, "adminId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	memberID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	detail, err := h.Members.GetDetail(ctx, memberID, adminID)
	if err != nil {
		if err == repository.ErrMemberNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	payments, err := h.Payments.ListByMember(ctx, memberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]paymentPart, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentPart(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"member": detail, "payments": out})
}

// publishPayment emits the payment.recorded event best-effort; a broker
// outage must never fail the request that already committed.
func (h *MemberHandler) publishPayment(p model.Payment, memberName, planName, kind string) {
	ev := queue.PaymentRecordedEvent{
		PaymentID:  p.ID,
		MemberID:   p.MemberID,
		MemberName: memberName,
		PlanID:     p.PlanID,
		PlanName:   planName,
		AdminID:    p.CreatedBy,
		Amount:     p.Amount,
		Kind:       kind,
		RecordedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		_ = queue_publisher.PublishPaymentRecorded(context.Background(), ev)
	}()
}

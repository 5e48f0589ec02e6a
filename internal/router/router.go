package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/handler"
	"github.com/iliyamo/gym-management/internal/middleware"
)

// Handlers collects every handler the API exposes so registration stays
// a single call from main.
type Handlers struct {
	Auth      *handler.AuthHandler
	Staff     *handler.StaffHandler
	Reset     *handler.ResetHandler
	Members   *handler.MemberHandler
	Plans     *handler.PlanHandler
	Expenses  *handler.ExpenseHandler
	Enquiries *handler.EnquiryHandler
	Dashboard *handler.DashboardHandler
}

// Register wires all routes. rateLimit guards the credential endpoints
// (login and OTP) and cache is the redis response cache applied to the
// dashboard and list reads; either may be nil to disable.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	registerAdmin(e, h, rateLimit)
	registerStaff(e, h, jwtSecret, rateLimit)
	registerLedger(e, h, jwtSecret, cache)
	registerDashboard(e, h, jwtSecret, cache)
}

// registerAdmin covers the admin identity and password-reset endpoints.
// They are unauthenticated: a locked-out owner has no valid session.
func registerAdmin(e *echo.Echo, h Handlers, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/admin")
	g.POST("/signup", h.Auth.Signup)
	g.POST("/login", h.Auth.Login, limited(rateLimit)...)
	g.POST("/refresh", h.Auth.Refresh)
	// Logout with a refresh token in the body; no access token needed.
	g.POST("/logout", h.Auth.Logout)

	g.POST("/sendOtp", h.Reset.SendOTP, limited(rateLimit)...)
	g.POST("/verifyOtp", h.Reset.VerifyOTP, limited(rateLimit)...)
	g.PATCH("/updatePassword", h.Reset.UpdatePassword)
}

// registerStaff covers staff sessions plus the admin-only staff
// management endpoints.
func registerStaff(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/staff")
	g.POST("/login", h.Staff.Login, limited(rateLimit)...)

	// Managing staff accounts requires an authenticated admin.
	adm := e.Group("/staff", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN"))
	adm.POST("/signup", h.Staff.Signup)
	adm.PATCH("/updateStaff", h.Staff.Update)
	adm.DELETE("/deleteStaff", h.Staff.Delete)
	adm.GET("/getStaff/:adminId", h.Staff.List)
}

// registerLedger covers members, plans, expenses and enquiries. All of
// these carry the createdBy/currentUser actor in the body, so the JWT
// gate only establishes that some admin or staff session exists; the
// fine-grained permission check happens in the handlers.
func registerLedger(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN", "STAFF")}

	m := e.Group("/member", auth...)
	m.POST("/addMember", h.Members.Add)
	m.POST("/updateMembership", h.Members.Renew)
	m.DELETE("/deleteMember", h.Members.Delete)
	m.GET("/getMembers/:adminId", h.Members.List, limited(cache)...)
	m.GET("/getMemberById/:adminId/:id", h.Members.GetByID)

	p := e.Group("/plan", auth...)
	p.POST("/addplan", h.Plans.Add)
	p.DELETE("/deletePlan", h.Plans.Delete)
	p.GET("/getPlans/:adminId", h.Plans.List, limited(cache)...)

	x := e.Group("/expense", auth...)
	x.POST("/addExpense", h.Expenses.Add)
	x.DELETE("/deleteExpense", h.Expenses.Delete)
	x.GET("/getExpenses/:adminId", h.Expenses.List, limited(cache)...)

	q := e.Group("/enquiry", auth...)
	q.POST("/addEnquiry", h.Enquiries.Add)
	q.PATCH("/updateEnquiry", h.Enquiries.Update)
	q.DELETE("/deleteEnquiry", h.Enquiries.Delete)
	q.GET("/getEnquiries/:creatorId", h.Enquiries.List, limited(cache)...)
}

// registerDashboard exposes the per-admin overview behind JWT and the
// response cache.
func registerDashboard(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/dashboard", middleware.JWTAuth(jwtSecret), middleware.RequireRole("ADMIN", "STAFF"))
	g.GET("/:adminId", h.Dashboard.Overview, limited(cache)...)
}

// limited turns an optional middleware into a route option slice.
func limited(mw echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if mw == nil {
		return nil
	}
	return []echo.MiddlewareFunc{mw}
}

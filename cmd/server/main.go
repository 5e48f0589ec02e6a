package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-management/internal/config"
	"github.com/iliyamo/gym-management/internal/database"
	"github.com/iliyamo/gym-management/internal/handler"
	"github.com/iliyamo/gym-management/internal/mailer"
	"github.com/iliyamo/gym-management/internal/middleware"
	"github.com/iliyamo/gym-management/internal/queue"
	"github.com/iliyamo/gym-management/internal/repository"
	"github.com/iliyamo/gym-management/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	admins := repository.NewAdminRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)
	plans := repository.NewPlanRepo(db)
	members := repository.NewMemberRepo(db)
	payments := repository.NewPaymentRepo(db)
	expenses := repository.NewExpenseRepo(db)
	enquiries := repository.NewEnquiryRepo(db)
	dash := repository.NewDashboardRepo(db)

	mail := mailer.New(cfg)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, admins, tokens),
		Staff:     handler.NewStaffHandler(cfg, admins, staff, tokens),
		Reset:     handler.NewResetHandler(cfg, admins, tokens, mail),
		Members:   handler.NewMemberHandler(admins, staff, members, plans, payments),
		Plans:     handler.NewPlanHandler(admins, staff, plans),
		Expenses:  handler.NewExpenseHandler(admins, staff, expenses),
		Enquiries: handler.NewEnquiryHandler(admins, staff, enquiries),
		Dashboard: handler.NewDashboardHandler(dash),
	}

	// Redis backs both the token-bucket limiter on credential endpoints
	// and the response cache on dashboard and list reads. A missing
	// redis simply disables them; the middlewares degrade to pass-through.
	rdb := config.NewRedisClient()
	var rateLimit, cache echo.MiddlewareFunc
	if rdb != nil {
		rateLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
		cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	// Background consumer writing the payment audit trail; runs until
	// the process exits and reconnects on broker outages.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, h, cfg.JWTSecret, rateLimit, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

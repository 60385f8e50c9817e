package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"partsdesk/internal/config"
	"partsdesk/internal/http/handlers"
	applog "partsdesk/internal/log"
	"partsdesk/internal/repos"
	"partsdesk/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Notification dispatcher (best-effort, post-commit only)
	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPAddr != "" {
		mailer = services.SMTPMailer{Addr: cfg.SMTPAddr, From: cfg.SMTPFrom}
	}
	dispatcher, err := services.NewDispatcher(cfg.TemplatesDir, mailer)
	if err != nil {
		log.Fatal(err)
	}
	defer dispatcher.Close()

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, dispatcher)

	// Public order channel (placement throttled harder than reads)
	app.Post("/orders", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.orders.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many orders, retry soon"})
		},
	}), deps.OrderHandler.Place)
	app.Get("/orders/:id", deps.OrderHandler.View)

	// API
	api := app.Group("/api/v1")
	api.Get("/availability", limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), deps.InventoryHandler.Check)

	// Auth routes (login throttled)
	app.Post("/admin/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many attempts, try again later"})
		},
	}), authH.Login)
	app.Post("/admin/logout", authH.Logout)

	// Admin lifecycle actions
	adminOnly := handlers.RequireAdmin(authSvc)
	app.Patch("/orders/:id", adminOnly, deps.AdminHandler.UpdateStatus)
	app.Patch("/orders/:id/tracking", adminOnly, deps.AdminHandler.AssignTracking)
	app.Post("/orders/:id/confirm-payment", adminOnly, deps.AdminHandler.ConfirmPayment)
	app.Patch("/orders/:id/archive", adminOnly, deps.AdminHandler.ToggleArchive)
	app.Delete("/orders/:id", adminOnly, deps.AdminHandler.Delete)

	admin := app.Group("/admin", adminOnly)
	admin.Get("/orders", deps.AdminHandler.ListOrders)
	admin.Get("/parts", deps.AdminHandler.ListParts)
	admin.Post("/parts/:id/stock", deps.AdminHandler.AdjustStock)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

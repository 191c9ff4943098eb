package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"shinejewelry/internal/auth"
	"shinejewelry/internal/config"
	"shinejewelry/internal/http/handlers"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/mail"
	"shinejewelry/internal/repos"
	"shinejewelry/internal/store"
	"shinejewelry/internal/uploads"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	files, err := uploads.NewManager(cfg.UploadDir)
	if err != nil {
		log.Fatal(err)
	}
	db, err := repos.OpenDB(cfg.ArchiveDSN)
	if err != nil {
		log.Fatal(err)
	}
	mailer, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		log.Fatal(err)
	}

	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: 25 << 20, // multipart product uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
		},
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/uploads/") || strings.HasPrefix(p, "/assets/") || !strings.HasPrefix(p, "/api/")
		},
	}))

	// ---------- Static assets ----------
	uploadRoot := files.Root()
	log.Printf("[static] /        -> %s", cfg.StaticDir)
	log.Printf("[static] /uploads -> %s", uploadRoot)

	// Guarded uploads to avoid traversal
	app.Get("/uploads/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(uploadRoot, clean), true)
	})
	app.Static("/", cfg.StaticDir)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(cfg, st, files, db, mailer)
	verifier := auth.NewEnvVerifier(cfg.AdminUser, cfg.AdminPassHash)
	admin := auth.RequireAdmin(verifier)

	app.Get("/api/products", deps.Catalog.Products)
	app.Get("/api/ping", deps.Catalog.Ping)

	app.Post("/api/add-category", admin, deps.Category.Add)
	app.Post("/api/add-product", admin, deps.Product.Add)
	app.Post("/api/add-product-background", admin, deps.Product.Add)
	app.Patch("/api/product/:id", admin, deps.Product.Edit)
	app.Delete("/api/product/:id", admin, deps.Product.Delete)
	app.Delete("/api/category/:id", admin, deps.Category.Delete)

	app.Post("/api/contact", deps.Contact.Send)
	app.Post("/api/order", deps.Order.Place)
	app.Get("/api/confirm-payment", deps.Order.ConfirmPayment)

	// SPA-style fallback to the storefront
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}

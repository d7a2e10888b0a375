package main

import (
	"flag"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhwlcrzzz/attendance-dashboard/app/cache"
	"github.com/jhwlcrzzz/attendance-dashboard/app/config"
	"github.com/jhwlcrzzz/attendance-dashboard/app/database"
	"github.com/jhwlcrzzz/attendance-dashboard/app/metrics"
	"github.com/jhwlcrzzz/attendance-dashboard/app/routes/auth"
	"github.com/jhwlcrzzz/attendance-dashboard/app/routes/dashboard"
	"github.com/jhwlcrzzz/attendance-dashboard/app/services"
	"github.com/jhwlcrzzz/attendance-dashboard/app/sheets"
)

// customErrorHandler keeps API errors as JSON and web errors on the error page.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if len(c.Path()) >= 4 && c.Path()[:4] == "/api" {
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    code,
		})
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":        "Error - Attendance Dashboard",
		"ErrorCode":    code,
		"ErrorMessage": err.Error(),
	})
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Campus-local time zone drives timestamp parsing and the "today" window.
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: Failed to load %s location, falling back to UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	time.Local = loc
	log.Printf("Application time zone set to: %s", time.Local.String())

	if cfg.Sheet.CSVBaseURL == "" {
		log.Fatal("sheet.csv_base_url is required (or set SHEET_CSV_URL)")
	}

	// Optional archive database
	if cfg.Archive.Enabled {
		db, err := config.InitDB(cfg.Archive)
		if err != nil {
			log.Fatal("Failed to connect archive database:", err)
		}
		defer db.Close()

		if err := database.RunMigrations(db); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	}

	// Metrics registry
	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	// Sheet source -> reader -> cache pipeline
	client := sheets.NewClient(cfg.Sheet.CSVBaseURL, cfg.Sheet.FetchTimeout)
	fetcher := services.NewSheetFetcher(client, cfg.Sheet, loc)
	eventCache := cache.New(fetcher, m)

	// Background poller; one cycle up front so the dashboard is not empty
	// until the first tick.
	poller, err := services.StartPoller(cfg.Poll.Schedule, eventCache, config.GetDB(), cfg.Sheet.FetchTimeout)
	if err != nil {
		log.Fatal("Failed to start poller:", err)
	}
	defer poller.Stop()
	go poller.RunCycle()

	// Initialize template engine
	engine := html.New("./app/templates", ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layouts/main",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Static files
	app.Static("/static", "./static")

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	auth.SetupAuthRoutes(app)
	dashboard.SetupDashboardRoutes(app, eventCache, poller)

	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})

	log.Printf("Server starting on %s", cfg.Listen)
	log.Fatal(app.Listen(cfg.Listen))
}

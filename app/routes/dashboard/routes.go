package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhwlcrzzz/attendance-dashboard/app/cache"
	"github.com/jhwlcrzzz/attendance-dashboard/app/routes/auth"
	"github.com/jhwlcrzzz/attendance-dashboard/app/services"
)

var (
	eventCache *cache.Cache
	poller     *services.Poller
)

// SetupDashboardRoutes registers the dashboard page and its API. The read
// endpoints are public (the dashboard hangs on a wall screen); anything that
// mutates state or reaches the archive requires a login.
func SetupDashboardRoutes(app *fiber.App, ca *cache.Cache, p *services.Poller) {
	eventCache = ca
	poller = p

	app.Get("/dashboard", DashboardPage)

	api := app.Group("/api")
	api.Get("/occupancy", GetOccupancyAPI)
	api.Get("/entries", GetEntriesAPI)
	api.Get("/status", GetStatusAPI)

	api.Post("/refresh", auth.AuthMiddleware, ForceRefreshAPI)
	api.Get("/history", auth.AuthMiddleware, GetHistoryAPI)
}

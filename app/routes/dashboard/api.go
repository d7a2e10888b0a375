package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhwlcrzzz/attendance-dashboard/app/attendance"
	"github.com/jhwlcrzzz/attendance-dashboard/app/config"
	"github.com/jhwlcrzzz/attendance-dashboard/app/database"
	"github.com/jhwlcrzzz/attendance-dashboard/app/models"
)

// DashboardPage renders the wall-screen view: counts, latest entries and the
// staleness line.
func DashboardPage(c *fiber.Ctx) error {
	snap := eventCache.Snapshot()
	st := eventCache.Status()

	entries := eventCache.Events()
	if len(entries) > 20 {
		entries = entries[:20]
	}

	return c.Render("dashboard", fiber.Map{
		"Title":       "Campus Presence - Attendance Dashboard",
		"Inside":      snap.InsideCount,
		"Outside":     snap.OutsideCount,
		"TotalUnique": snap.TotalUnique,
		"Entries":     entries,
		"Status":      st,
		"Stale":       st.Phase == models.PhaseError,
		"LastUpdated": formatWhen(st.LastRefresh),
	})
}

// GetOccupancyAPI returns the occupancy snapshot. ?scope=today recomputes
// over events since local midnight; the default is the whole cached sheet.
func GetOccupancyAPI(c *fiber.Ctx) error {
	scope := c.Query("scope", "all")

	var snap models.OccupancySnapshot
	switch scope {
	case "all":
		snap = eventCache.Snapshot()
	case "today":
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		snap = attendance.Estimate(attendance.FilterSince(eventCache.Events(), midnight))
	default:
		return c.Status(400).JSON(fiber.Map{"error": "Invalid scope. Use all or today"})
	}

	return c.JSON(fiber.Map{
		"scope":    scope,
		"snapshot": snap,
	})
}

// GetEntriesAPI returns the latest N cached events, newest first.
func GetEntriesAPI(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "limit must be positive"})
	}
	if limit > 200 {
		limit = 200
	}

	entries := eventCache.Events()
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// GetStatusAPI reports the cache lifecycle state for staleness display.
func GetStatusAPI(c *fiber.Ctx) error {
	return c.JSON(eventCache.Status())
}

// ForceRefreshAPI invalidates the change marker and polls immediately.
func ForceRefreshAPI(c *fiber.Ctx) error {
	poller.ForceRefresh()

	st := eventCache.Status()
	if st.Phase == models.PhaseError {
		return c.Status(502).JSON(fiber.Map{
			"message": "Refresh failed, previous data retained",
			"status":  st,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Refresh completed",
		"status":  st,
	})
}

// GetHistoryAPI returns archived refresh batches.
func GetHistoryAPI(c *fiber.Ctx) error {
	db := config.GetDB()
	if db == nil {
		return c.Status(503).JSON(fiber.Map{"error": "Archive is disabled"})
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := database.GetSnapshotHistory(db, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch history"})
	}

	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}

func formatWhen(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"buslines/internal/http/middleware"
	"buslines/internal/services"

	"github.com/gin-gonic/gin"
)

// ScheduleMaintenance is the action-style admin endpoint.
// POST /api/admin/schedule-maintenance?action=status|cleanup|generate|maintain (staff)
func ScheduleMaintenance(c *gin.Context) {
	action := strings.TrimSpace(c.DefaultQuery("action", "status"))
	switch action {
	case "status":
		ScheduleHealth(c)
	case "cleanup":
		CleanupSchedules(c)
	case "generate":
		svc := services.ScheduleService{
			HorizonDays: horizonDays,
			RequestID:   middleware.GetRequestID(c),
		}
		created, skipped, err := svc.GenerateMissing()
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"created": created, "skipped": skipped})
	case "maintain":
		MaintainSchedules(c)
	default:
		RespondError(c, http.StatusBadRequest, "action must be one of status, cleanup, generate, maintain", nil)
	}
}

// POST /api/admin/schedules/maintain?days_ahead=90&dry_run=true (staff)
func MaintainSchedules(c *gin.Context) {
	daysAhead := 0
	if raw := strings.TrimSpace(c.Query("days_ahead")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			RespondError(c, http.StatusBadRequest, "days_ahead must be between 1 and 365", err)
			return
		}
		daysAhead = n
	}
	dryRun := c.Query("dry_run") == "true"

	svc := services.ScheduleService{
		HorizonDays: horizonDays,
		RequestID:   middleware.GetRequestID(c),
	}
	stats, err := svc.Maintain(daysAhead, dryRun)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// POST /api/admin/schedules/cleanup?dry_run=true (staff)
func CleanupSchedules(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true"

	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	removed, err := svc.CleanupPast(dryRun)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	key := "removed"
	if dryRun {
		key = "would_remove"
	}
	c.JSON(http.StatusOK, gin.H{key: removed, "dry_run": dryRun})
}

// POST /api/admin/bookings/release-stale (staff)
func ReleaseStaleBookings(c *gin.Context) {
	svc := bookingService(c)
	released, err := svc.ReleaseStaleProcessing(staleMaxAge)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

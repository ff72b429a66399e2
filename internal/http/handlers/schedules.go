package handlers

import (
	"net/http"
	"strings"
	"time"

	"buslines/internal/repositories"
	"buslines/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/schedules/search?origin=..&destination=..&date=YYYY-MM-DD
func SearchSchedules(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	if origin == "" || destination == "" {
		RespondError(c, http.StatusBadRequest, "origin and destination are required", nil)
		return
	}

	day, err := utils.ParseDate(strings.TrimSpace(c.Query("date")))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD", err)
		return
	}

	repo := repositories.ScheduleRepo{}
	schedules, err := repo.Search(origin, destination, day)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// GET /api/schedules/dates?origin=..&destination=..
func AvailableDates(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	if origin == "" || destination == "" {
		RespondError(c, http.StatusBadRequest, "origin and destination are required", nil)
		return
	}

	repo := repositories.ScheduleRepo{}
	dates, err := repo.AvailableDates(origin, destination, utils.DayStart(time.Now()))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// GET /api/schedules/:id
func GetScheduleByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.ScheduleRepo{}
	detail, err := repo.GetDetail(nil, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GET /api/schedules/:id/bookings (staff)
func GetScheduleBookings(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.BookingRepo{}
	bookings, err := repo.ListBySchedule(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

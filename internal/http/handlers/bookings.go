package handlers

import (
	"net/http"
	"strings"

	"buslines/internal/http/middleware"
	"buslines/internal/repositories"
	"buslines/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var req services.CreateBookingInput
	if !BindJSONOrError(c, &req) {
		return
	}

	svc := bookingService(c)
	booking, form, err := svc.CreateBooking(req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking": booking,
		"payment": form,
	})
}

// GET /api/bookings/:reference
func GetBookingByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "booking reference required", nil)
		return
	}
	repo := repositories.BookingRepo{}
	booking, err := repo.GetByReference(nil, reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /api/bookings/:reference/status
func GetBookingStatus(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "booking reference required", nil)
		return
	}
	repo := repositories.BookingRepo{}
	booking, err := repo.GetByReference(nil, reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_reference": booking.BookingReference,
		"status":            booking.Status,
	})
}

// GET /api/bookings/:reference/payment-status
func GetBookingPaymentStatus(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "booking reference required", nil)
		return
	}
	repo := repositories.BookingRepo{}
	booking, err := repo.GetByReference(nil, reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_reference": booking.BookingReference,
		"status":            booking.Status,
		"payment_id":        booking.PaymentID,
		"gateway_status":    booking.GatewayStatus,
		"payment_date":      booking.PaymentDate,
		"failure_reason":    booking.FailureReason,
	})
}

// POST /api/bookings/:reference/cancel
func CancelBooking(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "booking reference required", nil)
		return
	}
	repo := repositories.BookingRepo{}
	existing, err := repo.GetByReference(nil, reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := bookingService(c)
	booking, err := svc.CancelBooking(existing.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled", "booking": booking})
}

// GET /api/bookings/:reference/e-ticket
func GetBookingETicket(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "booking reference required", nil)
		return
	}

	svc := services.DocsService{
		Bookings:  repositories.BookingRepo{},
		Schedules: repositories.ScheduleRepo{},
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateETicket(reference)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func bookingService(c *gin.Context) services.BookingService {
	rid := middleware.GetRequestID(c)
	return services.BookingService{
		PayFast:   services.PayFastService{Env: payfastEnv, RequestID: rid},
		Notifier:  notifier,
		RequestID: rid,
	}
}

package api

import (
	"log"
	stdhttp "net/http"

	intconfig "buslines/internal/config"
	h "buslines/internal/http/handlers"
	"buslines/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/endpoints", h.Endpoints)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		// Public catalog
		api.GET("/routes", h.GetRoutes)
		api.GET("/routes/:id", h.GetRouteByID)
		api.GET("/buses", h.GetBuses)
		api.GET("/buses/:id", h.GetBusByID)

		// Schedules
		schedules := api.Group("/schedules")
		schedules.GET("/search", h.SearchSchedules)
		schedules.GET("/dates", h.AvailableDates)
		schedules.GET("/health", h.ScheduleHealth)
		schedules.GET("/:id", h.GetScheduleByID)

		// Bookings
		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:reference", h.GetBookingByReference)
		bookings.GET("/:reference/status", h.GetBookingStatus)
		bookings.GET("/:reference/payment-status", h.GetBookingPaymentStatus)
		bookings.POST("/:reference/cancel", h.CancelBooking)
		bookings.GET("/:reference/e-ticket", h.GetBookingETicket)

		// Payments (gateway callback, no auth: the signature is the auth)
		payments := api.Group("/payments")
		payments.POST("/payfast/notify", h.PayFastNotify)

		// Staff-only administration
		admin := api.Group("/admin", middleware.RequireAuth(env.JWTSecret), middleware.RequireRoles("staff", "admin"))
		admin.POST("/routes", h.CreateRoute)
		admin.PUT("/routes/:id", h.UpdateRoute)
		admin.DELETE("/routes/:id", h.DeleteRoute)
		admin.POST("/buses", h.CreateBus)
		admin.PUT("/buses/:id", h.UpdateBus)
		admin.DELETE("/buses/:id", h.DeleteBus)
		admin.GET("/schedules/:id/bookings", h.GetScheduleBookings)
		admin.POST("/schedule-maintenance", h.ScheduleMaintenance)
		admin.POST("/schedules/maintain", h.MaintainSchedules)
		admin.POST("/schedules/cleanup", h.CleanupSchedules)
		admin.POST("/bookings/release-stale", h.ReleaseStaleBookings)
	}

	h.SetRouter(r)
	return r
}

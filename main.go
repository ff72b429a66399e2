package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "buslines/internal/config"
	intdb "buslines/internal/db"
	router "buslines/internal/http"
	"buslines/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := intdb.EnsureSchema(intconfig.DB); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	// Background jobs: nightly schedule maintenance plus the stale-payment
	// sweep that unsticks abandoned checkouts.
	c := cron.New()
	if _, err := c.AddFunc(env.MaintenanceCron, func() {
		svc := services.ScheduleService{HorizonDays: env.HorizonDays, RequestID: "cron-maintain"}
		if _, err := svc.Maintain(0, false); err != nil {
			log.Printf("[CRON] schedule maintenance failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid maintenance cron %q: %v", env.MaintenanceCron, err)
	}
	if _, err := c.AddFunc(env.StaleSweepCron, func() {
		svc := services.BookingService{
			PayFast:   services.PayFastService{Env: env.PayFast, RequestID: "cron-sweep"},
			RequestID: "cron-sweep",
		}
		if _, err := svc.ReleaseStaleProcessing(env.StaleMaxAge); err != nil {
			log.Printf("[CRON] stale payment sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("invalid sweep cron %q: %v", env.StaleSweepCron, err)
	}
	c.Start()
	defer c.Stop()

	// Run one maintenance pass on boot so a fresh deployment has schedules
	// before the first nightly run.
	go func() {
		svc := services.ScheduleService{HorizonDays: env.HorizonDays, RequestID: "startup-maintain"}
		if _, err := svc.Maintain(0, false); err != nil {
			log.Printf("startup schedule maintenance failed: %v", err)
		}
	}()

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly.")
}

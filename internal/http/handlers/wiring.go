package handlers

import (
	"time"

	intconfig "buslines/internal/config"
	"buslines/internal/services"
)

var (
	payfastEnv  intconfig.PayFastEnv
	notifier    *services.NotifyService
	horizonDays int
	staleMaxAge = 30 * time.Minute
)

// Configure wires environment-derived settings into the handler package.
// Called once at startup, before the router serves traffic.
func Configure(env intconfig.Env) {
	payfastEnv = env.PayFast
	notifier = &services.NotifyService{Env: env.SMTP}
	horizonDays = env.HorizonDays
	if env.StaleMaxAge > 0 {
		staleMaxAge = env.StaleMaxAge
	}
	SetJWTSecret(env.JWTSecret)
}

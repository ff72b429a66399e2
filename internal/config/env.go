package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// PayFastEnv carries the gateway contract settings. Defaults point at the
// public sandbox so a dev checkout works without credentials.
type PayFastEnv struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	BaseURL     string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string
	Sandbox     bool
}

type SMTPEnv struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string

	HorizonDays     int
	MaintenanceCron string
	StaleSweepCron  string
	StaleMaxAge     time.Duration

	PayFast PayFastEnv
	SMTP    SMTPEnv
}

func LoadEnv() Env {
	env := Env{
		AppAddr: getenv("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		DBUser: getenv("DB_USER", "root"),
		DBPass: strings.TrimSpace(os.Getenv("DB_PASS")),
		DBHost: getenv("DB_HOST", "127.0.0.1:3306"),
		DBName: getenv("DB_NAME", "buslines"),

		JWTSecret: getenv("JWT_SECRET", "super-secret-key-change-me"),

		HorizonDays:     getenvInt("SCHEDULE_HORIZON_DAYS", 90),
		MaintenanceCron: getenv("MAINTENANCE_CRON", "0 3 * * *"),
		StaleSweepCron:  getenv("STALE_SWEEP_CRON", "*/10 * * * *"),
		StaleMaxAge:     time.Duration(getenvInt("STALE_PAYMENT_MAX_AGE_MIN", 30)) * time.Minute,

		PayFast: PayFastEnv{
			MerchantID:  getenv("PAYFAST_MERCHANT_ID", "10000100"),
			MerchantKey: getenv("PAYFAST_MERCHANT_KEY", "46f0cd694581a"),
			Passphrase:  strings.TrimSpace(os.Getenv("PAYFAST_PASSPHRASE")),
			BaseURL:     getenv("PAYFAST_BASE_URL", "https://sandbox.payfast.co.za/eng/process"),
			ReturnURL:   getenv("PAYFAST_RETURN_URL", "http://localhost:3000/payment/return"),
			CancelURL:   getenv("PAYFAST_CANCEL_URL", "http://localhost:3000/payment/cancel"),
			NotifyURL:   getenv("PAYFAST_NOTIFY_URL", "http://localhost:8080/api/payments/payfast/notify"),
			Sandbox:     getenvBool("PAYFAST_SANDBOX", true),
		},
		SMTP: SMTPEnv{
			Host: strings.TrimSpace(os.Getenv("SMTP_HOST")),
			Port: getenv("SMTP_PORT", "587"),
			User: strings.TrimSpace(os.Getenv("SMTP_USER")),
			Pass: strings.TrimSpace(os.Getenv("SMTP_PASS")),
			From: getenv("SMTP_FROM", "bookings@localhost"),
		},
	}
	return env
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	// Pricing knobs for the shipping calculator.
	FreeShippingThreshold float64
	ShippingFlatRate      float64

	// Mailer. Empty SMTPAddr means emails go to the log only.
	SMTPAddr     string
	SMTPFrom     string
	TemplatesDir string
}

func Load() Config {
	// .env is optional; deployments may set env vars directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:                  getenv("PORT", "8080"),
		DBDSN:                 getenv("DB_DSN", "partsdesk.db"),
		LogFile:               getenv("LOG_FILE", "./partsdesk.log"),
		FreeShippingThreshold: getfloat("FREE_SHIPPING_THRESHOLD", 5000),
		ShippingFlatRate:      getfloat("SHIPPING_FLAT_RATE", 150),
		SMTPAddr:              getenv("SMTP_ADDR", ""),
		SMTPFrom:              getenv("SMTP_FROM", "orders@partsdesk.test"),
		TemplatesDir:          getenv("TEMPLATES_DIR", "./web/templates/emails"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s FREE_SHIPPING_THRESHOLD=%.0f SHIPPING_FLAT_RATE=%.0f",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.FreeShippingThreshold, cfg.ShippingFlatRate)
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] ignoring bad %s=%q", k, v)
		return def
	}
	return f
}

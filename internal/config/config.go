package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration values.
type Config struct {
	DatabaseDriver string
	DatabaseDSN    string
	HTTPPort       string
	AllowedOrigins []string

	RedisAddr     string
	RedisPassword string
	KafkaBrokers  []string
	KafkaTopic    string

	ReportsDir          string
	CatalogCSV          string
	LowStockSchedule    string
	SalesExportSchedule string

	Clinic Clinic
}

// Clinic is printed on invoices.
type Clinic struct {
	Name    string
	Address string
	Phone   string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	driver := strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite"))
	if driver != "sqlite" && driver != "pgx" {
		log.Printf("unsupported DATABASE_DRIVER %q, defaulting to sqlite", driver)
		driver = "sqlite"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if driver == "pgx" {
			dsn = "postgres://postgres@localhost:5432/dispensary?sslmode=disable"
		} else {
			dsn = "file:data/clinic.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
	}

	port := getEnv("HTTP_PORT", "8080")
	// Validate that port is numeric.
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	return Config{
		DatabaseDriver:      driver,
		DatabaseDSN:         dsn,
		HTTPPort:            port,
		AllowedOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "dispensary-events"),
		ReportsDir:          getEnv("REPORTS_DIR", "data/reports"),
		CatalogCSV:          getEnv("CATALOG_CSV", "assets/medicines.csv"),
		LowStockSchedule:    getEnv("LOW_STOCK_SCHEDULE", "0 8 * * *"),
		SalesExportSchedule: getEnv("SALES_EXPORT_SCHEDULE", "55 23 * * *"),
		Clinic: Clinic{
			Name:    getEnv("CLINIC_NAME", "Clinic Dispensary"),
			Address: os.Getenv("CLINIC_ADDRESS"),
			Phone:   os.Getenv("CLINIC_PHONE"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"os"
	"strconv"
)

type config struct {
	Port         string
	ProductsFile string
	DatabaseURL  string
	Watch        bool

	AdminJWTSecret string
	MetricsToken   string

	RateLimit         int
	RateWindowSeconds int
	TrustProxy        bool
}

func loadConfig() config {
	return config{
		Port:              getenv("PORT", "8082"),
		ProductsFile:      getenv("PRODUCTS_FILE", "products.txt"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Watch:             getenvBool("WATCH", false),
		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		MetricsToken:      os.Getenv("METRICS_TOKEN"),
		RateLimit:         getenvInt("RATE_LIMIT", 0),
		RateWindowSeconds: getenvInt("RATE_WINDOW_SECONDS", 60),
		TrustProxy:        getenvBool("TRUST_PROXY", false),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getenvBool(k string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

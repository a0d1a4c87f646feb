package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/sharegate"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("sharegate %s\n", version)
			return
		case "help", "-h", "--help":
			printUsage()
			return
		case "serve":
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded configuration from .env")
	}

	cfg := sharegate.SiteConfig{
		Name:        sharegate.EnvOr("SITE_NAME", "Newsroom"),
		URL:         strings.TrimSuffix(sharegate.EnvOr("SITE_URL", "http://localhost:3000"), "/"),
		Description: os.Getenv("SITE_DESCRIPTION"),
		Locale:      sharegate.EnvOr("SITE_LOCALE", "en_US"),

		Addr:       sharegate.EnvOr("ADDR", ":3000"),
		APIBaseURL: sharegate.MustEnv("API_BASE_URL"),
		APIToken:   os.Getenv("API_TOKEN"),

		AdminPassword: sharegate.MustEnv("ADMIN_PASSWORD"),
		SessionSecret: sharegate.MustEnv("ADMIN_SESSION_SECRET"),
		CookieSecure:  strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),

		FetchTimeout: envDuration("FETCH_TIMEOUT", 10*time.Second),
		CacheTTL:     envDuration("CACHE_TTL", 5*time.Minute),

		AnalyticsEnabled:      strings.EqualFold(os.Getenv("ANALYTICS_ENABLED"), "true"),
		AnalyticsDatabasePath: sharegate.EnvOr("ANALYTICS_DATABASE_PATH", "data/crawlers.db"),
	}

	app := sharegate.New(cfg,
		sharegate.WithStaticDir(sharegate.EnvOr("STATIC_DIR", "dist")),
	)
	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("sharegate: invalid %s: %v", key, err)
	}
	return d
}

func printUsage() {
	fmt.Println(`sharegate - crawler-aware share gateway for a news SPA

Usage:
  sharegate [command]

Commands:
  serve         Start the gateway (default)
  version       Print the sharegate version
  help          Show this help message

Configuration is read from the environment (optionally via .env):
  API_BASE_URL, ADMIN_PASSWORD, ADMIN_SESSION_SECRET are required;
  SITE_NAME, SITE_URL, SITE_DESCRIPTION, SITE_LOCALE, ADDR, STATIC_DIR,
  FETCH_TIMEOUT, CACHE_TTL, COOKIE_SECURE, ANALYTICS_ENABLED,
  ANALYTICS_DATABASE_PATH, API_TOKEN are optional.`)
}

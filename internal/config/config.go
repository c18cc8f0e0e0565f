package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aqcollect/aq-adapters/internal/measurement"
)

type AppConfig struct {
	// HTTPTimeout bounds every outbound adapter request.
	HTTPTimeout time.Duration

	// FetchInterval controls how often we fetch data for each source.
	FetchInterval time.Duration

	// Sources to fetch. The name selects the adapter, the URL the endpoint.
	Sources []measurement.Source

	// In-memory store retention.
	StoreMaxHistory int           // max number of batches per source (0 = unlimited)
	StoreMaxAge     time.Duration // max age of batches (0 = unlimited)

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	// Scheduler interval: default 15 minutes.
	intervalStr := getenvDefault("FETCH_INTERVAL", "15m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge
	cfg.Port = getenvDefault("PORT", "8080")

	sources, err := loadSources()
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources

	return cfg, nil
}

// loadSources parses AQ_SOURCES, a comma-separated list of name=url pairs.
// Defaults to the two government endpoints we ship adapters for.
func loadSources() ([]measurement.Source, error) {
	raw := getenvDefault("AQ_SOURCES",
		"actgov=https://www.data.act.gov.au/resource/94a5-zqnn.json,"+
			"watable=https://www.der.wa.gov.au/airquality")

	var sources []measurement.Source
	for _, pair := range strings.Split(raw, ",") {
		name, url, ok := strings.Cut(pair, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid AQ_SOURCES entry %q; want name=url", pair)
		}
		sources = append(sources, measurement.Source{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(url),
		})
	}

	return sources, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

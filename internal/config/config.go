package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	DatabaseURL    string
	KafkaBrokers   string
	RequestTimeout time.Duration
	OutboxPoll     time.Duration
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. DATABASE_URL is the only required value.
func Load() (Config, error) {
	_ = godotenv.Load()

	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if db == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	toutMS, _ := strconv.Atoi(getenv("REQUEST_TIMEOUT_MS", "2500"))
	pollMS, _ := strconv.Atoi(getenv("OUTBOX_POLL_MS", "500"))

	return Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    db,
		KafkaBrokers:   getenv("KAFKA_BROKERS", ""),
		RequestTimeout: time.Duration(toutMS) * time.Millisecond,
		OutboxPoll:     time.Duration(pollMS) * time.Millisecond,
	}, nil
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	RemoteSyncURL string        // empty disables remote mirroring
	MaxDocBytes   int           // cap on the serialized document
	CacheTTL      time.Duration // announcements feed cache lifetime
}

func Load() Config {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "terralink.db"
	} // sqlite file in project root
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./terralink.log"
	}
	remote := os.Getenv("REMOTE_SYNC_URL")

	maxDoc := 4 << 20 // data-URL photos make documents fat; 4 MiB mirrors browser quotas
	if s := os.Getenv("MAX_DOC_BYTES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			maxDoc = n
		}
	}
	cacheTTL := 30 * time.Second
	if s := os.Getenv("CACHE_TTL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cacheTTL = d
		}
	}

	cfg := Config{
		Port:          port,
		DBDSN:         dsn,
		LogFile:       logFile,
		RemoteSyncURL: remote,
		MaxDocBytes:   maxDoc,
		CacheTTL:      cacheTTL,
	}
	log.Printf("[config] PORT=%s DB_DSN=%s REMOTE_SYNC_URL=%s MAX_DOC_BYTES=%d", cfg.Port, cfg.DBDSN, cfg.RemoteSyncURL, cfg.MaxDocBytes)
	return cfg
}

package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AcceptWindow time.Duration
	LiveWindow   time.Duration
}

// ParseFlags validates flags and fills in defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("versus-server", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database driver (sqlite or postgres)")

	// Battle timing (documented defaults: 2h acceptance window, 24h live window)
	fs.DurationVar(&cfg.AcceptWindow, "accept-window", 0, "Time invitees have to accept a battle")
	fs.DurationVar(&cfg.LiveWindow, "live-window", 0, "Time a battle stays live for voting")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8400 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.AcceptWindow == 0 {
		if s := os.Getenv("ACCEPT_WINDOW"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid ACCEPT_WINDOW env variable")
			}
			cfg.AcceptWindow = d
		} else {
			cfg.AcceptWindow = 2 * time.Hour
		}
	}
	if cfg.AcceptWindow < 0 {
		return Config{}, errors.New("accept window must be positive")
	}

	if cfg.LiveWindow == 0 {
		if s := os.Getenv("LIVE_WINDOW"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid LIVE_WINDOW env variable")
			}
			cfg.LiveWindow = d
		} else {
			cfg.LiveWindow = 24 * time.Hour
		}
	}
	if cfg.LiveWindow < 0 {
		return Config{}, errors.New("live window must be positive")
	}

	return cfg, nil
}

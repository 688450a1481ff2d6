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
	LedgerURL    string
	AdminKeySalt string
	IdentitySalt string

	// Submission and verification bounds
	SubmitTimeout  time.Duration
	VerifyInterval time.Duration
	VerifyTimeout  time.Duration
	VerifyAttempts int
}

// ParseFlags validates flags and fills in defaults
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ballotbooth", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.LedgerURL, "l", "", "Ledger gateway base URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.IdentitySalt, "identity-salt", "", "Voter identity salt (prefer env)")

	// Submission / verification bounds
	fs.DurationVar(&cfg.SubmitTimeout, "submit-timeout", 0, "Ledger cast-vote timeout")
	fs.DurationVar(&cfg.VerifyInterval, "verify-interval", 0, "Delay between verification polls")
	fs.DurationVar(&cfg.VerifyTimeout, "verify-timeout", 0, "Per-poll verification timeout")
	fs.IntVar(&cfg.VerifyAttempts, "verify-attempts", 0, "Verification poll attempt budget")

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
			cfg.Port = 3419 // default
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

	if cfg.LedgerURL == "" {
		cfg.LedgerURL = os.Getenv("LEDGER_URL")
	}
	if cfg.LedgerURL == "" {
		return Config{}, errors.New("ledger gateway URL required (use -l or LEDGER_URL env)")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.IdentitySalt == "" {
		cfg.IdentitySalt = os.Getenv("IDENTITY_SALT")
	}
	if cfg.IdentitySalt == "" {
		return Config{}, errors.New("IDENTITY_SALT required")
	}

	// Bounded-operation defaults; env overrides, flags win
	if cfg.SubmitTimeout == 0 {
		cfg.SubmitTimeout = envDuration("SUBMIT_TIMEOUT", 15*time.Second)
	}
	if cfg.VerifyInterval == 0 {
		cfg.VerifyInterval = envDuration("VERIFY_INTERVAL", 2*time.Second)
	}
	if cfg.VerifyTimeout == 0 {
		cfg.VerifyTimeout = envDuration("VERIFY_TIMEOUT", 5*time.Second)
	}
	if cfg.VerifyAttempts == 0 {
		if s := os.Getenv("VERIFY_ATTEMPTS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return Config{}, errors.New("invalid VERIFY_ATTEMPTS env variable")
			}
			cfg.VerifyAttempts = n
		} else {
			cfg.VerifyAttempts = 10
		}
	}

	return cfg, nil
}

func envDuration(name string, fallback time.Duration) time.Duration {
	if s := os.Getenv(name); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

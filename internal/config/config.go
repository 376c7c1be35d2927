package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	// HTTP Server
	Port string

	// Storage
	DataDir    string
	InboxDir   string
	ArchiveDir string

	// Categorization. Empty means the embedded default rules.
	RulesFile string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		DataDir:    getEnv("DATA_DIR", "./data/ledgers"),
		InboxDir:   getEnv("INBOX_DIR", "./data/inbox"),
		ArchiveDir: getEnv("ARCHIVE_DIR", "./data/archive"),
		RulesFile:  getEnv("RULES_FILE", ""),
	}
}

// JournalPath is where the ingestion runs journal lives, next to the
// ledgers themselves.
func (c *Config) JournalPath() string {
	return filepath.Join(c.DataDir, "runs.json")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataDir == "" {
		errs = append(errs, "data directory cannot be empty")
	}
	if c.InboxDir == "" {
		errs = append(errs, "inbox directory cannot be empty")
	}
	if c.ArchiveDir == "" {
		errs = append(errs, "archive directory cannot be empty")
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("rules file does not exist: %s", c.RulesFile))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

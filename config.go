package gita

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anshulchahar/gita/internal/store"
)

// Default values used by WithDefaults.
const (
	DefaultTokenEndpoint = "https://oauth2.googleapis.com/token"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultUnlockedUnits = 2
	DefaultLogMode       = "dev"
)

// Config configures content loading, synchronization and logging.
type Config struct {
	// StoreBaseURL is the document store base, e.g.
	// https://firestore.googleapis.com/v1/projects/<p>/databases/(default)/documents
	StoreBaseURL string `yaml:"store_url"`

	// TokenEndpoint accepts the refresh-token grant.
	TokenEndpoint string `yaml:"token_endpoint"`

	// ClientID and ClientSecret identify the OAuth client used for refresh.
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	// CredentialsPath is the on-disk credential snapshot holding the cached
	// access token and refresh token.
	CredentialsPath string `yaml:"credentials"`

	// ContentDir holds unit<N>.json documents.
	ContentDir string `yaml:"content_dir"`

	// LedgerPath is the local SQLite run ledger.
	LedgerPath string `yaml:"ledger_path"`

	// UnlockedUnits is the highest unit number published as unlocked in the
	// chapter projection.
	UnlockedUnits int `yaml:"unlocked_units"`

	// HTTPTimeout bounds each remote request.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Debug enables debug-level logs and HTTP tracing.
	Debug bool `yaml:"debug"`

	// LogMode selects the log encoder: dev, prod or nop.
	LogMode string `yaml:"log_mode"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TokenEndpoint:   DefaultTokenEndpoint,
		CredentialsPath: store.DefaultCredentialsPath(),
		LedgerPath:      store.LedgerPath(),
		UnlockedUnits:   DefaultUnlockedUnits,
		HTTPTimeout:     DefaultHTTPTimeout,
		LogMode:         DefaultLogMode,
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(store.ExpandHome(path))
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// ConfigFromEnv reads configuration from environment variables.
//
//	GITA_STORE_URL       → StoreBaseURL
//	GITA_TOKEN_ENDPOINT  → TokenEndpoint
//	GITA_CLIENT_ID       → ClientID
//	GITA_CLIENT_SECRET   → ClientSecret
//	GITA_CREDENTIALS     → CredentialsPath
//	GITA_CONTENT_DIR     → ContentDir
//	GITA_LEDGER_PATH     → LedgerPath
//	GITA_UNLOCKED_UNITS  → UnlockedUnits
//	GITA_DEBUG           → Debug (any non-empty value enables)
//	GITA_LOG_MODE        → LogMode
func ConfigFromEnv() Config {
	c := Config{
		StoreBaseURL:    os.Getenv("GITA_STORE_URL"),
		TokenEndpoint:   os.Getenv("GITA_TOKEN_ENDPOINT"),
		ClientID:        os.Getenv("GITA_CLIENT_ID"),
		ClientSecret:    os.Getenv("GITA_CLIENT_SECRET"),
		CredentialsPath: os.Getenv("GITA_CREDENTIALS"),
		ContentDir:      os.Getenv("GITA_CONTENT_DIR"),
		LedgerPath:      os.Getenv("GITA_LEDGER_PATH"),
		Debug:           os.Getenv("GITA_DEBUG") != "",
		LogMode:         os.Getenv("GITA_LOG_MODE"),
	}
	if n, err := strconv.Atoi(os.Getenv("GITA_UNLOCKED_UNITS")); err == nil {
		c.UnlockedUnits = n
	}
	return c
}

// Merge overlays the non-zero fields of o onto c.
func (c Config) Merge(o Config) Config {
	if o.StoreBaseURL != "" {
		c.StoreBaseURL = o.StoreBaseURL
	}
	if o.TokenEndpoint != "" {
		c.TokenEndpoint = o.TokenEndpoint
	}
	if o.ClientID != "" {
		c.ClientID = o.ClientID
	}
	if o.ClientSecret != "" {
		c.ClientSecret = o.ClientSecret
	}
	if o.CredentialsPath != "" {
		c.CredentialsPath = o.CredentialsPath
	}
	if o.ContentDir != "" {
		c.ContentDir = o.ContentDir
	}
	if o.LedgerPath != "" {
		c.LedgerPath = o.LedgerPath
	}
	if o.UnlockedUnits != 0 {
		c.UnlockedUnits = o.UnlockedUnits
	}
	if o.HTTPTimeout != 0 {
		c.HTTPTimeout = o.HTTPTimeout
	}
	if o.Debug {
		c.Debug = true
	}
	if o.LogMode != "" {
		c.LogMode = o.LogMode
	}
	return c
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	c = DefaultConfig().Merge(c)
	c.StoreBaseURL = strings.TrimSuffix(c.StoreBaseURL, "/")
	c.CredentialsPath = store.ExpandHome(c.CredentialsPath)
	c.ContentDir = store.ExpandHome(c.ContentDir)
	c.LedgerPath = store.ExpandHome(c.LedgerPath)
	return c
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.UnlockedUnits < 0 {
		return &ValidationError{Field: "UnlockedUnits", Message: "must be non-negative"}
	}
	if c.HTTPTimeout < 0 {
		return &ValidationError{Field: "HTTPTimeout", Message: "must be non-negative"}
	}
	switch strings.ToLower(c.LogMode) {
	case "", "dev", "development", "prod", "production", "nop", "off", "none":
	default:
		return &ValidationError{Field: "LogMode", Message: fmt.Sprintf("unknown mode %q (want dev, prod or nop)", c.LogMode)}
	}
	if c.StoreBaseURL != "" {
		if err := checkURL(c.StoreBaseURL); err != nil {
			return &ValidationError{Field: "StoreBaseURL", Message: err.Error()}
		}
	}
	if c.TokenEndpoint != "" {
		if err := checkURL(c.TokenEndpoint); err != nil {
			return &ValidationError{Field: "TokenEndpoint", Message: err.Error()}
		}
	}
	return nil
}

// ValidateRemote checks the fields required by commands that talk to the
// document store.
func (c *Config) ValidateRemote() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.StoreBaseURL == "" {
		return &ValidationError{Field: "StoreBaseURL", Message: "required: document store base URL"}
	}
	if c.TokenEndpoint == "" {
		return &ValidationError{Field: "TokenEndpoint", Message: "required: OAuth token endpoint"}
	}
	if c.ClientID == "" {
		return &ValidationError{Field: "ClientID", Message: "required for token refresh"}
	}
	if c.ClientSecret == "" {
		return &ValidationError{Field: "ClientSecret", Message: "required for token refresh"}
	}
	if c.CredentialsPath == "" {
		return &ValidationError{Field: "CredentialsPath", Message: "required: credential file location"}
	}
	return nil
}

// IsUnlocked reports whether a unit is published as unlocked.
func (c *Config) IsUnlocked(unitNumber int) bool {
	return unitNumber <= c.UnlockedUnits
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

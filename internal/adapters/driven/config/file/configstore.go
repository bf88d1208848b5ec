package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.cwsync/config.toml"

// Config is the full application configuration, loaded from a TOML file
// with environment overrides for secrets and the scheduled sync knobs.
type Config struct {
	ConnectWise ConnectWiseConfig `toml:"connectwise"`
	OpenAI      OpenAIConfig      `toml:"openai"`
	Search      SearchConfig      `toml:"search"`
	Sync        SyncConfig        `toml:"sync"`
	Server      ServerConfig      `toml:"server"`
	Scheduler   SchedulerConfig   `toml:"scheduler"`
}

// ConnectWiseConfig configures the ticket source API.
type ConnectWiseConfig struct {
	BaseURL    string   `toml:"base_url"`
	CompanyID  string   `toml:"company_id"`
	PublicKey  string   `toml:"public_key"`
	PrivateKey string   `toml:"private_key"`
	ClientID   string   `toml:"client_id"`
	Boards     []string `toml:"boards"`
	PageSize   int      `toml:"page_size"`
}

// OpenAIConfig configures the summarisation and embedding endpoints.
type OpenAIConfig struct {
	ChatEndpoint      string `toml:"chat_endpoint"`
	EmbeddingEndpoint string `toml:"embedding_endpoint"`
	APIKey            string `toml:"api_key"`
}

// SearchConfig configures the target search index.
type SearchConfig struct {
	Endpoint   string `toml:"endpoint"`
	IndexName  string `toml:"index_name"`
	AdminKey   string `toml:"admin_key"`
	APIVersion string `toml:"api_version"`
	BatchSize  int    `toml:"batch_size"`
}

// SyncConfig configures the scheduled synchronisation runs.
type SyncConfig struct {
	// Mode is the sync mode for scheduled runs (default: incremental).
	Mode string `toml:"mode"`

	// IncrementalDays is the lookback window for scheduled incremental
	// runs (default: 80).
	IncrementalDays int `toml:"incremental_days"`

	// BackfillUntil, when set (RFC3339), pins the range start for
	// scheduled runs.
	BackfillUntil string `toml:"backfill_until"`

	// FlushThreshold is the buffered-document flush point for scheduled
	// runs (default: 10).
	FlushThreshold int `toml:"flush_threshold"`
}

// ServerConfig configures the HTTP trigger server.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// SchedulerConfig configures the background schedule windows.
type SchedulerConfig struct {
	Enabled              bool   `toml:"enabled"`
	BusinessStartHour    int    `toml:"business_start_hour"`
	BusinessEndHour      int    `toml:"business_end_hour"`
	BusinessIntervalMins int    `toml:"business_interval_minutes"`
	OffHoursIntervalMins int    `toml:"off_hours_interval_minutes"`
	DataDir              string `toml:"data_dir"`
}

// Load reads configuration from a TOML file, fills defaults and applies
// environment overrides. A missing file is not an error when path is
// empty; the defaults and environment must then carry everything.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	expanded, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", expanded, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Default path absent: start from defaults.
	default:
		return nil, fmt.Errorf("read config %s: %w", expanded, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sync.Mode == "" {
		c.Sync.Mode = string(domain.ModeIncremental)
	}
	if c.Sync.IncrementalDays == 0 {
		c.Sync.IncrementalDays = 80
	}
	if c.Sync.FlushThreshold == 0 {
		c.Sync.FlushThreshold = 10
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	sched := domain.DefaultSchedulerConfig()
	if c.Scheduler.BusinessStartHour == 0 {
		c.Scheduler.BusinessStartHour = sched.BusinessStartHour
	}
	if c.Scheduler.BusinessEndHour == 0 {
		c.Scheduler.BusinessEndHour = sched.BusinessEndHour
	}
	if c.Scheduler.BusinessIntervalMins == 0 {
		c.Scheduler.BusinessIntervalMins = int(sched.BusinessInterval / time.Minute)
	}
	if c.Scheduler.OffHoursIntervalMins == 0 {
		c.Scheduler.OffHoursIntervalMins = int(sched.OffHoursInterval / time.Minute)
	}
	if c.Scheduler.DataDir == "" {
		c.Scheduler.DataDir = "~/.cwsync"
	}
}

// applyEnv overlays environment variables. Secrets are expected from
// the environment in deployed installs; the sync knobs mirror the
// deployment settings of the hosted function this replaces.
func (c *Config) applyEnv() {
	if v := os.Getenv("CW_PRIVATE_KEY"); v != "" {
		c.ConnectWise.PrivateKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("SEARCH_ADMIN_KEY"); v != "" {
		c.Search.AdminKey = v
	}
	if v := os.Getenv("TIMER_SYNC_MODE"); v != "" {
		c.Sync.Mode = v
	}
	if v := os.Getenv("INCREMENTAL_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Sync.IncrementalDays = days
		}
	}
	if v := os.Getenv("BACKFILL_UNTIL_UTC"); v != "" {
		c.Sync.BackfillUntil = v
	}
}

// Validate checks the fields every sync run needs.
func (c *Config) Validate() error {
	if c.ConnectWise.BaseURL == "" {
		return fmt.Errorf("config: connectwise.base_url is required")
	}
	if c.ConnectWise.CompanyID == "" || c.ConnectWise.PublicKey == "" || c.ConnectWise.PrivateKey == "" {
		return fmt.Errorf("config: connectwise credentials are required")
	}
	if len(c.ConnectWise.Boards) == 0 {
		return fmt.Errorf("config: at least one board is required")
	}
	if c.OpenAI.ChatEndpoint == "" || c.OpenAI.EmbeddingEndpoint == "" {
		return fmt.Errorf("config: openai endpoints are required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("config: openai.api_key is required")
	}
	if c.Search.Endpoint == "" || c.Search.IndexName == "" {
		return fmt.Errorf("config: search endpoint and index name are required")
	}
	if c.Search.AdminKey == "" {
		return fmt.Errorf("config: search.admin_key is required")
	}
	if !domain.SyncMode(c.Sync.Mode).Valid() {
		return fmt.Errorf("config: invalid sync mode %q", c.Sync.Mode)
	}
	return nil
}

// SchedulerDomainConfig converts the file representation to the domain
// scheduler configuration.
func (c *Config) SchedulerDomainConfig() domain.SchedulerConfig {
	return domain.SchedulerConfig{
		Enabled:           c.Scheduler.Enabled,
		BusinessStartHour: c.Scheduler.BusinessStartHour,
		BusinessEndHour:   c.Scheduler.BusinessEndHour,
		BusinessInterval:  time.Duration(c.Scheduler.BusinessIntervalMins) * time.Minute,
		OffHoursInterval:  time.Duration(c.Scheduler.OffHoursIntervalMins) * time.Minute,
	}
}

// BackfillUntilTime parses the backfill override, returning the zero
// time when unset.
func (c *Config) BackfillUntilTime() (time.Time, error) {
	if c.Sync.BackfillUntil == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Sync.BackfillUntil)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: parse sync.backfill_until: %w", err)
	}
	return t.UTC(), nil
}

// DataDir returns the expanded scheduler data directory, creating it if
// needed.
func (c *Config) DataDir() (string, error) {
	dir, err := expandHome(c.Scheduler.DataDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func expandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

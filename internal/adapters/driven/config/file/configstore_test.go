package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const sampleConfig = `
[connectwise]
base_url = "https://api-na.myconnectwise.net/v4_6_release/apis/3.0"
company_id = "acme"
public_key = "pub"
private_key = "priv"
client_id = "client-123"
boards = ["Help Desk", "Managed Services"]

[openai]
chat_endpoint = "https://eastus2.example.com/openai/deployments/gpt-4o-mini/chat/completions?api-version=2024-08-01-preview"
embedding_endpoint = "https://eastus2.example.com/openai/deployments/text-embedding-3-large/embeddings?api-version=2023-05-15"
api_key = "openai-key"

[search]
endpoint = "https://myservice.search.windows.net"
index_name = "tickets"
admin_key = "admin-key"

[sync]
mode = "incremental"
incremental_days = 30
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "acme", cfg.ConnectWise.CompanyID)
	assert.Equal(t, []string{"Help Desk", "Managed Services"}, cfg.ConnectWise.Boards)
	assert.Equal(t, "tickets", cfg.Search.IndexName)
	assert.Equal(t, 30, cfg.Sync.IncrementalDays)

	// Defaults fill the unspecified sections.
	assert.Equal(t, 10, cfg.Sync.FlushThreshold)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 7, cfg.Scheduler.BusinessStartHour)
	assert.Equal(t, 19, cfg.Scheduler.BusinessEndHour)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("SEARCH_ADMIN_KEY", "env-search")
	t.Setenv("CW_PRIVATE_KEY", "env-priv")
	t.Setenv("TIMER_SYNC_MODE", "full")
	t.Setenv("INCREMENTAL_DAYS", "45")
	t.Setenv("BACKFILL_UNTIL_UTC", "2025-01-01T00:00:00Z")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-openai", cfg.OpenAI.APIKey)
	assert.Equal(t, "env-search", cfg.Search.AdminKey)
	assert.Equal(t, "env-priv", cfg.ConnectWise.PrivateKey)
	assert.Equal(t, "full", cfg.Sync.Mode)
	assert.Equal(t, 45, cfg.Sync.IncrementalDays)

	until, err := cfg.BackfillUntilTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), until)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg.Sync.Mode = "hourly"
	assert.Error(t, cfg.Validate())

	cfg, err = Load(writeConfig(t, `[connectwise]
base_url = "https://api.example.com"`))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestSchedulerDomainConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig+`
[scheduler]
enabled = true
business_interval_minutes = 30
`))
	require.NoError(t, err)

	sched := cfg.SchedulerDomainConfig()
	assert.True(t, sched.Enabled)
	assert.Equal(t, 30*time.Minute, sched.BusinessInterval)
	assert.Equal(t, domain.DefaultSchedulerConfig().OffHoursInterval, sched.OffHoursInterval)
}

func TestBackfillUntilUnset(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	until, err := cfg.BackfillUntilTime()
	require.NoError(t, err)
	assert.True(t, until.IsZero())
}

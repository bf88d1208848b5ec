package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_Short(t *testing.T) {
	assert.Equal(t, "Run a ticket synchronisation pass", syncCmd.Short)
}

func TestSyncCmd_Executes(t *testing.T) {
	orch := &mockOrchestrator{summary: &domain.RunSummary{
		RunID:     "run-1",
		SyncMode:  domain.ModeIncremental,
		Processed: 4,
		Skipped:   2,
		Uploaded:  6,
		DateRange: domain.DateRange{From: "2025-03-01", To: "2025-03-08"},
	}}
	injectServices(t, orch, &mockImporter{})

	out, err := execute(t, "sync")
	require.NoError(t, err)

	assert.Equal(t, domain.ModeIncremental, orch.lastOpts.Mode)
	assert.Contains(t, out, "Run run-1 complete (2025-03-01 to 2025-03-08)")
	assert.Contains(t, out, "Tickets processed: 4")
	assert.Contains(t, out, "Documents uploaded: 6")
}

func TestSyncCmd_ModeFlag(t *testing.T) {
	orch := &mockOrchestrator{summary: &domain.RunSummary{}}
	injectServices(t, orch, &mockImporter{})

	_, err := execute(t, "sync", "--mode", "full")
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFull, orch.lastOpts.Mode)
}

func TestSyncCmd_BackfillFlag(t *testing.T) {
	orch := &mockOrchestrator{summary: &domain.RunSummary{}}
	injectServices(t, orch, &mockImporter{})

	_, err := execute(t, "sync", "--backfill-until", "2024-06-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), orch.lastOpts.BackfillUntil)
}

func TestSyncCmd_BadBackfillFlag(t *testing.T) {
	injectServices(t, &mockOrchestrator{summary: &domain.RunSummary{}}, &mockImporter{})

	_, err := execute(t, "sync", "--backfill-until", "yesterday")
	assert.ErrorContains(t, err, "parse --backfill-until")
}

func TestSyncCmd_RunFailure(t *testing.T) {
	injectServices(t, &mockOrchestrator{err: assert.AnError}, &mockImporter{})

	_, err := execute(t, "sync")
	assert.ErrorContains(t, err, "sync failed")
}

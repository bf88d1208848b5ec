package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
)

// mockOrchestrator implements driving.SyncOrchestrator for testing.
type mockOrchestrator struct {
	lastOpts driving.RunOptions
	summary  *domain.RunSummary
	err      error
}

func (m *mockOrchestrator) Run(_ context.Context, opts driving.RunOptions) (*domain.RunSummary, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *mockOrchestrator) Status() driving.SyncStatus {
	return driving.SyncStatus{}
}

// mockImporter implements driving.Importer for testing.
type mockImporter struct {
	lastPath string
	summary  *domain.ImportSummary
	err      error
}

func (m *mockImporter) ImportCSV(_ context.Context, path string) (*domain.ImportSummary, error) {
	m.lastPath = path
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

// injectServices swaps the package-level services for mocks and
// restores them when the test finishes.
func injectServices(t *testing.T, orch driving.SyncOrchestrator, imp driving.Importer) {
	t.Helper()
	origOrch, origImp := syncOrchestrator, importService
	syncOrchestrator, importService = orch, imp
	t.Cleanup(func() {
		syncOrchestrator, importService = origOrch, origImp
	})
}

// execute runs the root command with args and captures its output.
// Flag variables persist across executions, so they are reset to their
// defaults first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	syncMode = string(domain.ModeIncremental)
	lookbackDays = 0
	backfillFrom = ""

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

package domain

// SyncMode selects the lookback window for a run.
type SyncMode string

const (
	// ModeIncremental looks back a week; the routine on-demand mode.
	ModeIncremental SyncMode = "incremental"

	// ModeFull looks back 240 days for a near-complete rebuild.
	ModeFull SyncMode = "full"

	// ModeTest looks back a day and caps processing at one ticket,
	// for dry-run validation of the pipeline wiring.
	ModeTest SyncMode = "test"
)

// Valid reports whether the mode is one of the known sync modes.
func (m SyncMode) Valid() bool {
	switch m {
	case ModeIncremental, ModeFull, ModeTest:
		return true
	}
	return false
}

// LookbackDays returns the default lookback window for the mode.
func (m SyncMode) LookbackDays() int {
	switch m {
	case ModeFull:
		return 240
	case ModeTest:
		return 1
	default:
		return 7
	}
}

// ChangeAction is the per-ticket classification decided before processing.
type ChangeAction string

const (
	// ChangeSkip means the ticket is unchanged since the last sync.
	ChangeSkip ChangeAction = "skip"

	// ChangeProcess means the ticket is new or changed and must be
	// summarised, embedded and upserted.
	ChangeProcess ChangeAction = "process"

	// ChangeDelete means the ticket is open or reopened and all of its
	// indexed documents must be removed.
	ChangeDelete ChangeAction = "delete"
)

// DateRange is the half-open closed-date window of a run, as dates.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RunSummary is the structured result of one synchronisation run.
type RunSummary struct {
	RunID     string    `json:"runId"`
	SyncMode  SyncMode  `json:"syncMode"`
	Processed int       `json:"totalTicketsProcessed"`
	Skipped   int       `json:"ticketsSkipped"`
	Uploaded  int       `json:"documentsUploaded"`
	Deleted   int       `json:"ticketsDeleted"`
	DateRange DateRange `json:"dateRange"`
}

// ImportSummary is the result of a bulk CSV import.
type ImportSummary struct {
	Rows     int `json:"rows"`
	Uploaded int `json:"documentsUploaded"`
}

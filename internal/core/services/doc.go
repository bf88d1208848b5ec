// Package services contains the core pipeline logic: change detection
// against the index watermark, narrative reconciliation, the sync
// orchestrator, the bulk CSV importer and the background scheduler.
package services

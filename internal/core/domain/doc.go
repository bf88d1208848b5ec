// Package domain defines the core entities of the ticket sync pipeline:
// tickets and notes fetched from the ticketing system, the documents
// written to the search index, and the run-level types that describe a
// synchronisation pass.
package domain

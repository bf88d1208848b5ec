// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the ticketing API, the summarisation and
// embedding services, the search index, and scheduler persistence.
package driven

// Package driving provides interfaces for primary (inbound) ports: the
// operations the CLI, HTTP trigger and scheduler invoke on the core.
package driving

// Package application wires configuration, logging, component storage,
// handlers and the HTTP server together, keeping the main package focused on
// CLI parsing and orchestration.
package application

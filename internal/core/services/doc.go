// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The scrape service writes the content store, the ingest service
// keeps the vector index in step with it, and the answer and stats
// services are read-side consumers.
package services

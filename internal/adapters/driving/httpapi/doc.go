// Package httpapi exposes the answer, stats and scrape services over
// HTTP for the dashboard collaborator. Routes live under /api, errors
// are a JSON {"error": ...} envelope, and CORS is open by default so
// a locally served UI can call the API directly.
package httpapi

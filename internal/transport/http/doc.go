// Package http exposes the analytics pipeline over REST.
//
// Endpoints:
//
//	POST /api/analytics/aggregate      — run one filter/aggregate/rank pass
//	GET  /api/analytics/filters        — selectable values and year bounds
//	GET  /api/analytics/ranking/export — full ranked table as csv or xlsx
//	GET  /api/healthz                  — dataset readiness
//	GET  /ws                           — dataset lifecycle events
//
// Request bodies are validated with validator/v10; failures and service
// errors are rendered as RFC 7807 problem responses by the central
// ErrorHandler.
package http

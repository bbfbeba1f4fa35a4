// Package services holds the business layer between the HTTP transport and
// the analytics pipeline. AnalyticsService runs aggregations against the
// cached dataset, answers filter-option queries for the interaction surface,
// and streams exports; HealthService reports dataset readiness.
package services

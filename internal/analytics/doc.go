// Package analytics implements the filter/aggregate/rank pipeline over
// canonical enrollment records.
//
// Aggregate is a pure function of (records, filter spec): it filters by year
// range and categorical allowed sets, groups the chosen metric into a
// (year, dimension value) time series, derives a compound annual growth rate
// from the per-year totals, and ranks institutions by summed metric with
// market-share percentages. Empty results are values, never errors.
package analytics

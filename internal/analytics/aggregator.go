// Package analytics derives per-URL statistics from raw click events. The
// aggregation is a pure fold over the click log: same input, same summary.
package analytics

import (
	"shortlink/internal/types"
)

const dayFormat = "2006-01-02"

// Summarize folds a short URL's click log into summary structures. The
// total is reconciled against the record's atomic counter: under the
// append-only log design the two can briefly disagree, and the larger
// value wins.
func Summarize(rec types.ShortURL, details []types.ClickDetail) types.AnalyticsSummary {
	summary := types.AnalyticsSummary{
		TotalClicks:      rec.ClickCount,
		UniqueVisitors:   UniqueVisitors(details),
		ClicksByCountry:  make(map[string]int64),
		ClicksByReferrer: make(map[string]int64),
		ClicksByDay:      make(map[string]int64),
		ClicksByDevice:   make(map[string]int64),
		ClicksByBrowser:  make(map[string]int64),
	}
	if n := int64(len(details)); n > summary.TotalClicks {
		summary.TotalClicks = n
	}

	for _, d := range details {
		if d.Country != "" {
			summary.ClicksByCountry[d.Country]++
		}
		if d.Referrer != "" {
			summary.ClicksByReferrer[d.Referrer]++
		}
		if d.DeviceType != "" {
			summary.ClicksByDevice[d.DeviceType]++
		}
		if d.Browser != "" {
			summary.ClicksByBrowser[d.Browser]++
		}
		if !d.Timestamp.IsZero() {
			summary.ClicksByDay[d.Timestamp.UTC().Format(dayFormat)]++
		}
	}
	return summary
}

// UniqueVisitors counts distinct IP addresses; clicks without an IP do not
// contribute.
func UniqueVisitors(details []types.ClickDetail) int64 {
	seen := make(map[string]struct{}, len(details))
	for _, d := range details {
		if d.IPAddress != "" {
			seen[d.IPAddress] = struct{}{}
		}
	}
	return int64(len(seen))
}

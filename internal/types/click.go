package types

import "time"

// ClickContext is the raw per-visit signal handed in by the caller. Geo and
// device fields are derived from it before storage; an explicitly supplied
// Country/City (from an upstream edge header) wins over IP resolution.
type ClickContext struct {
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`
	Referrer  string `json:"referrer"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
}

// ClickDetail is one recorded visit of a short URL, owned by its parent
// record and stored in an append-only per-URL log.
type ClickDetail struct {
	Timestamp  time.Time `json:"timestamp"`
	IPAddress  string    `json:"ip_address,omitempty"`
	Country    string    `json:"country,omitempty"`
	City       string    `json:"city,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	DeviceType string    `json:"device_type,omitempty"`
	Browser    string    `json:"browser,omitempty"`
	OS         string    `json:"os,omitempty"`
}

// AnalyticsSummary is derived from a ShortURL's click log, never stored.
type AnalyticsSummary struct {
	TotalClicks      int64            `json:"total_clicks"`
	UniqueVisitors   int64            `json:"unique_visitors"`
	ClicksByCountry  map[string]int64 `json:"clicks_by_country"`
	ClicksByReferrer map[string]int64 `json:"clicks_by_referrer"`
	ClicksByDay      map[string]int64 `json:"clicks_by_day"`
	ClicksByDevice   map[string]int64 `json:"clicks_by_device"`
	ClicksByBrowser  map[string]int64 `json:"clicks_by_browser"`
}

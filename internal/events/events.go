// Package events publishes per-search telemetry to Kafka through a buffered,
// drop-on-overflow collector so that telemetry can never slow a search down.
package events

import "time"

// SearchEvent describes one executed search.
type SearchEvent struct {
	Query        string    `json:"query"`
	Stems        []string  `json:"stems,omitempty"`
	FiltersOnly  bool      `json:"filters_only"`
	TotalMatches int       `json:"total_matches"`
	OnThisPage   int       `json:"on_this_page"`
	Page         int       `json:"page"`
	CacheHit     bool      `json:"cache_hit"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id,omitempty"`
}

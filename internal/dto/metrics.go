package dto

import "time"

// SystemMetrics is a JSON friendly digest of the Prometheus collectors.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"avgRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	StoreErrors              uint64    `json:"storeErrors"`
	WorkspaceSessions        int       `json:"workspaceSessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

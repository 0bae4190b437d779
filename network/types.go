package network

// Admin endpoints exposed by the proxy backend.
const (
	StatsPath       = "/api/stats"
	StartPath       = "/api/start"
	StopPath        = "/api/stop"
	BlockSitePath   = "/api/block-site"
	UnblockSitePath = "/api/unblock-site"
	QuickBlockPath  = "/api/quick-block"
	ClearCachePath  = "/api/clear-cache"
	ClearLogsPath   = "/api/clear-logs"
)

// StatusSuccess is the only status value the backend uses for a successful command.
const StatusSuccess = "success"

// StatsSnapshot is the aggregate state reported by GET /api/stats.
type StatsSnapshot struct {
	TotalRequests     int64    `json:"total_requests"`
	BlockedRequests   int64    `json:"blocked_requests"`
	CachedItems       int64    `json:"cached_items"`
	BlockedSitesCount int64    `json:"blocked_sites_count"`
	ServerRunning     bool     `json:"server_running"`
	BlockedSites      []string `json:"blocked_sites,omitempty"`
}

// statsResponse is the raw wire shape of GET /api/stats. ServerRunning is a
// pointer so a body that is not a snapshot ({}, null, an error object) is
// rejected instead of reading as a stopped, empty proxy.
type statsResponse struct {
	TotalRequests     int64    `json:"total_requests"`
	BlockedRequests   int64    `json:"blocked_requests"`
	CachedItems       int64    `json:"cached_items"`
	BlockedSitesCount int64    `json:"blocked_sites_count"`
	ServerRunning     *bool    `json:"server_running"`
	BlockedSites      []string `json:"blocked_sites"`
}

func (r statsResponse) snapshot() StatsSnapshot {
	return StatsSnapshot{
		TotalRequests:     r.TotalRequests,
		BlockedRequests:   r.BlockedRequests,
		CachedItems:       r.CachedItems,
		BlockedSitesCount: r.BlockedSitesCount,
		ServerRunning:     *r.ServerRunning,
		BlockedSites:      r.BlockedSites,
	}
}

// PatternRequest is the body of block-site and unblock-site.
type PatternRequest struct {
	Pattern string `json:"pattern"`
}

// QuickBlockRequest is the body of quick-block.
type QuickBlockRequest struct {
	Site string `json:"site"`
}

// commandResponse is the raw wire shape of every POST endpoint. Status is a
// pointer so a body without the field can be told apart from an empty status.
type commandResponse struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
}

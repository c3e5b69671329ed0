package server

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks request counters for the /metrics endpoint.
type Metrics struct {
	PlaylistRequests  atomic.Int64
	PlaylistErrors    atomic.Int64
	RateLimited       atomic.Int64
	UpstreamSaturated atomic.Int64
}

// Snapshot returns the current counter values by name.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"playlist_requests":  m.PlaylistRequests.Load(),
		"playlist_errors":    m.PlaylistErrors.Load(),
		"rate_limited":       m.RateLimited.Load(),
		"upstream_saturated": m.UpstreamSaturated.Load(),
	}
}

// Format renders the counters one per line as "name value".
func (m *Metrics) Format() string {
	snap := m.Snapshot()
	var sb strings.Builder
	for _, k := range []string{"playlist_requests", "playlist_errors", "rate_limited", "upstream_saturated"} {
		fmt.Fprintf(&sb, "%s %d\n", k, snap[k])
	}
	return sb.String()
}

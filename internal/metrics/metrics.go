package metrics

import (
	"sync/atomic"
	"time"
)

// Registry holds process-local counters for the synthesis pipeline. All
// methods are safe for concurrent use.
type Registry struct {
	startedAt time.Time

	generations      atomic.Uint64
	backgroundBuilds atomic.Uint64
	repairs          atomic.Uint64
	previews         atomic.Uint64
	gateDenials      atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{startedAt: time.Now()}
}

func (r *Registry) IncGenerations()      { r.generations.Add(1) }
func (r *Registry) IncBackgroundBuilds() { r.backgroundBuilds.Add(1) }
func (r *Registry) IncRepairs()          { r.repairs.Add(1) }
func (r *Registry) IncPreviews()         { r.previews.Add(1) }
func (r *Registry) IncGateDenials()      { r.gateDenials.Add(1) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Generations      uint64 `json:"generations"`
	BackgroundBuilds uint64 `json:"background_builds"`
	Repairs          uint64 `json:"repairs"`
	Previews         uint64 `json:"previews"`
	GateDenials      uint64 `json:"gate_denials"`
}

func (r *Registry) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:    int64(time.Since(r.startedAt).Seconds()),
		Generations:      r.generations.Load(),
		BackgroundBuilds: r.backgroundBuilds.Load(),
		Repairs:          r.repairs.Load(),
		Previews:         r.previews.Load(),
		GateDenials:      r.gateDenials.Load(),
	}
}

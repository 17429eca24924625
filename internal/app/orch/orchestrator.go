// Package orch coordinates presence, call pairing and recognition streams
// on behalf of the signal adapter.
package orch

import (
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/stt"
	"github.com/dkeye/Parley/internal/metrics"
)

type Orchestrator struct {
	Registry    *app.Registry
	Presence    *app.Presence
	Languages   *app.Languages
	Calls       *app.Calls
	Transcripts *stt.Manager
	Metrics     *metrics.Metrics
}

// Online returns the registered display names for broadcasts.
func (o *Orchestrator) Online() []string {
	return o.Presence.Online()
}

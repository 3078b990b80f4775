package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Created sessions."},
	{ID: goSession.MetricSessionLoaded, Name: "gosession_session_loaded_total", Help: "Loads that returned a live session."},
	{ID: goSession.MetricSessionMissed, Name: "gosession_session_missed_total", Help: "Loads of absent session ids."},
	{ID: goSession.MetricSessionCorrupt, Name: "gosession_session_corrupt_total", Help: "Loads that hit undecodable records."},
	{ID: goSession.MetricSessionSaved, Name: "gosession_session_saved_total", Help: "Session record replacements."},
	{ID: goSession.MetricSessionTouched, Name: "gosession_session_touched_total", Help: "Read-only activity refreshes."},
	{ID: goSession.MetricSessionDeleted, Name: "gosession_session_deleted_total", Help: "Explicit session deletes."},
	{ID: goSession.MetricSessionExpiredOnAccess, Name: "gosession_session_expired_on_access_total", Help: "Expired sessions reaped on load."},
	{ID: goSession.MetricSweepRun, Name: "gosession_sweep_run_total", Help: "Completed sweep passes."},
	{ID: goSession.MetricSweepDeleted, Name: "gosession_sweep_deleted_total", Help: "Records deleted by sweep passes."},
	{ID: goSession.MetricSweepSkipped, Name: "gosession_sweep_skipped_total", Help: "Records sweep passes left alone."},
	{ID: goSession.MetricSweepError, Name: "gosession_sweep_error_total", Help: "Per-record and per-pass sweep failures."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricLoadLatency, Name: "gosession_load_latency_seconds", Help: "Load latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

// Package metrics exposes the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScanOutcomes counts scans by direction and outcome kind.
var ScanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "presensi_scan_outcomes_total",
	Help: "Scan results by direction and outcome kind.",
}, []string{"direction", "kind"})

// CooldownHits counts scans swallowed by the debounce window.
var CooldownHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "presensi_scan_cooldown_hits_total",
	Help: "Scans ignored because the same badge was just processed.",
})

// CloseOutRecords counts records labeled by the nightly close-out.
var CloseOutRecords = promauto.NewCounter(prometheus.CounterOpts{
	Name: "presensi_closeout_records_total",
	Help: "Attendance records marked no_checkout by the nightly job.",
})

// Package metrics defines the prometheus metric types exported while a
// sweep runs, and convenience methods to record a completed run's stats.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RunsTotal counts completed simulation runs, labeled by window size
	// and payload size.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arqsim_runs_total",
		Help: "Number of completed simulation runs.",
	}, []string{"w", "l"})

	// RetransmissionsTotal sums retransmissions (timeout and fast-retransmit
	// induced) across completed runs.
	RetransmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arqsim_retransmissions_total",
		Help: "Cumulative retransmissions across completed runs.",
	}, []string{"w", "l"})

	// BufferEventsTotal sums receive-buffer rejections (integrity or
	// backpressure) across completed runs.
	BufferEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arqsim_buffer_events_total",
		Help: "Cumulative receive-buffer rejection events across completed runs.",
	}, []string{"w", "l"})

	// DelayedACKsTotal sums delayed-ACK events across completed runs.
	DelayedACKsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arqsim_delayed_acks_total",
		Help: "Cumulative delayed-ACK events across completed runs.",
	}, []string{"w", "l"})

	// GoodputBps reports the most recent run's goodput per (w, l) cell.
	GoodputBps = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arqsim_goodput_bps",
		Help: "Most recent goodput observed for a given (W, L) cell, in bits per second.",
	}, []string{"w", "l"})
)

// RecordRun updates the metric set from one completed run's results.
func RecordRun(w, l int, retransmissions, bufferEvents, delayedACKs int, goodputBps float64) {
	labels := prometheus.Labels{"w": strconv.Itoa(w), "l": strconv.Itoa(l)}
	RunsTotal.With(labels).Inc()
	RetransmissionsTotal.With(labels).Add(float64(retransmissions))
	BufferEventsTotal.With(labels).Add(float64(bufferEvents))
	DelayedACKsTotal.With(labels).Add(float64(delayedACKs))
	GoodputBps.With(labels).Set(goodputBps)
}

// Serve starts the /metrics HTTP endpoint on addr. It blocks until the
// server returns an error (e.g. on listener failure); callers typically
// run it in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// Package stats collects throughput statistics of tprobe sessions.
//
// Two kinds of statistics are kept:
//
//   - Recorder: process wide counters and histograms (bytes per direction,
//     sessions per outcome, sampled rates) backed by VictoriaMetrics/metrics.
//     A Recorder can be exposed in the Prometheus text format over HTTP.
//
//   - RateSummary: per session distribution of the sampled rates backed by a
//     go-metrics histogram, used for the summary line at the end of a session.
package stats

// Package metrics defines the sink interfaces used to record dispatch
// decisions. Every sink implements MetricsSink; richer sinks additionally
// implement the optional recorder interfaces, which callers detect with a
// type assertion. NewMetricsSink builds sinks from configuration and wraps
// several of them in a MultiSink.
package metrics

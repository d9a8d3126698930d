// Package prometheus exposes engine counters through client_golang.
//
// [Collector] implements prometheus.Collector over [goToken.Engine.MetricsSnapshot].
// Counter names are gotoken_*_total; the single histogram is
// gotoken_authenticate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global default registry. Callers pick the registry.
//   - Mutate engine state.
package prometheus

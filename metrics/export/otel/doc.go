// Package otel mirrors engine counters as OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per counter and one
// Int64ObservableGauge per histogram bucket. The caller owns the MeterProvider.
package otel

// Package telemetry owns the Prometheus registry of a service and serves it
// at GET /metrics.
//
// Each service builds its own Registry instead of using the global default
// one, so tests can create as many handlers as they like without duplicate
// registration panics.
package telemetry

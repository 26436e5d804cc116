// Package metric provides Prometheus-based metrics collection and an HTTP
// server for platform monitoring.
//
// Core platform metrics (dispatch traffic, communicator pool activity,
// discovery lookups) are registered automatically by NewRegistry. Services
// can register their own metrics alongside them through the Registry, and
// Server exposes everything in Prometheus format together with a health
// endpoint.
package metric

// Package tracing integrates OpenTelemetry with the transformation engine. The
// orchestrator opens one span per request, workflow and task; applications that
// do not install an exporter get no-op spans.
package tracing

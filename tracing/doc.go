// Package tracing wraps OpenTelemetry so that workflow operations can open
// spans without importing the upstream packages directly.
package tracing

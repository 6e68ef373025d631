// Package ui renders command lifecycle events as concise console messages
// while structured telemetry continues to flow through the zap logger.
package ui

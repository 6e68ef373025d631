// Package retry re-runs failing operations sequentially with exponential backoff.
//
// Only the final attempt's error reaches the caller, unwrapped; earlier failures are logged
// through zap at warn level together with the computed delay.
package retry

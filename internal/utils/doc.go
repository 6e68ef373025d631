// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory that integrate Viper,
// environment variables, and zap logging for the CLI, the context accessor
// carrying per-invocation state through cobra commands, and small
// deterministic helpers such as ManualOrderCompare.
package utils

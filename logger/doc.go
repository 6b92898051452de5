// Package logger provides structured logging for apikit built on zerolog.
//
// A process-wide logger is available through the package-level functions
// (Debug, Info, Warn, Error). Subsystems obtain a tagged child logger via
// WithComponent so every line carries the emitting component:
//
//	log := logger.WithComponent("posts")
//	log.Info("cache refreshed", logger.Fields("count", 20))
//
// Configuration comes from Config (level, format, output) or from the
// LOG_LEVEL / LOG_FORMAT / LOG_OUTPUT environment variables via NewFromEnv.
package logger

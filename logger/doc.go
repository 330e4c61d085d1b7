// Package logger provides structured logging for rxlab using zerolog.
//
// Loggers are component scoped and take fields as plain maps:
//
//	log := logger.WithComponent("runner")
//	log.Info("Run started", logger.Fields("run_id", id, "pipeline", name))
//
// WithContext copies the request id, run id and the active trace/span ids
// from a context onto the returned logger.
package logger

// Package logger provides structured logging for httpbridge using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("adapter")
//	log.Info("call completed", logger.Fields("profile", "default", "status", 200))
package logger

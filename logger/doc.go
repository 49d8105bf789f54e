// Package logger provides structured logging for padflow using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map-based structured fields.
//
// # Usage
//
//	log := logger.NewDefault("padflow").WithComponent("runner")
//	log.Info("run started", logger.Fields(logger.FieldRunID, id))
package logger

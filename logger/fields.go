package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across the engine.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID   = "run_id"
	FieldDisease = "disease"
	FieldCohort  = "cohort"

	// Components
	FieldComponent = "component"
	FieldDriver    = "driver"

	// Operations
	FieldOperation = "operation"
	FieldQuery     = "query"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount      = "count"
	FieldBatchSize  = "batch_size"
	FieldTotalCount = "total_count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Store struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewStore(db *sql.DB) *Store {
//	    return &Store{
//	        logger: logger.ComponentLogger("store"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	diseaseLogger := logger.ChildLogger(baseLogger, logger.FieldDisease, key)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}

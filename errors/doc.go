// Package errors provides the structured error type surfaced by httpbridge.
//
// Adapter-level failures are reported as *AppError values carrying a stable,
// machine-readable ErrorCode. Two AppErrors match under errors.Is when their
// codes are equal, so callers can test for a category without caring about
// the message or details:
//
//	if errors.Is(err, apperrors.ConnectionRefused()) {
//	    // the engine could not establish a connection
//	}
//
// Errors produced by an engine that are not connection failures are never
// wrapped in an AppError; they reach the caller exactly as the engine
// returned them.
package errors

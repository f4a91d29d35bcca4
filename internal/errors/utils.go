package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

func isProduction() bool {
	return os.Getenv("ENVIRONMENT") == "production"
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	prod := isProduction()

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ErrorInfo{CategoryDatabase, ternary(prod, "database operation failed", err.Error())}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorInfo{CategoryNotFound, ternary(prod, "resource not found", err.Error())}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{CategoryTimeout, ternary(prod, "request timed out", err.Error())}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{CategoryTimeout, ternary(prod, "request canceled", err.Error())}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return ErrorInfo{CategoryTimeout, ternary(prod, "request timed out", err.Error())}
	case strings.Contains(msg, "not found") || strings.Contains(msg, "no rows"):
		return ErrorInfo{CategoryNotFound, ternary(prod, "resource not found", err.Error())}
	case strings.Contains(msg, "database") || strings.Contains(msg, "sql") ||
		strings.Contains(msg, "postgres") || strings.Contains(msg, "redis"):
		return ErrorInfo{CategoryDatabase, ternary(prod, "database operation failed", err.Error())}
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") ||
		strings.Contains(msg, "dial"):
		return ErrorInfo{CategoryNetwork, ternary(prod, "connection error occurred", err.Error())}
	case strings.Contains(msg, "validation") || strings.Contains(msg, "binding") ||
		strings.Contains(msg, "invalid") || strings.Contains(msg, "required"):
		return ErrorInfo{CategoryValidation, ternary(prod, "validation failed", err.Error())}
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "permission"):
		return ErrorInfo{CategoryAuth, ternary(prod, "permission denied", err.Error())}
	}

	return ErrorInfo{CategoryUnknown, ternary(prod, "an error occurred", err.Error())}
}

// returns the sanitized message for an error
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}

func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}

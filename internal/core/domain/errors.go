package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Adapters wrap them with context; callers classify with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Extraction Errors.

	// ErrUnsupportedFormat indicates the input is not a readable PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEncryptedDocument indicates the PDF is password protected.
	ErrEncryptedDocument = errors.New("encrypted document")

	// Upstream Service Errors.

	// ErrEmbeddingService indicates the embedding provider failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrRateLimited indicates an upstream provider throttled the request.
	// Callers may back off and retry.
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable indicates the vector store could not be reached or failed.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector's length differs from the store's dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrGenerationService indicates the answer generation provider failed.
	ErrGenerationService = errors.New("answer generation service error")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no LLM provider is configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Configuration Errors.

	// ErrConfiguration indicates invalid settings. Fatal at construction time.
	ErrConfiguration = errors.New("invalid configuration")
)

// ConfigurationError describes a single invalid setting.
type ConfigurationError struct {
	// Field is the settings key, e.g. "chunking.overlap".
	Field string

	// Reason explains the constraint that was violated.
	Reason string
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is reports ConfigurationError as ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// IsRetryable reports whether err is a transient upstream failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrEmbeddingService) ||
		errors.Is(err, ErrGenerationService)
}

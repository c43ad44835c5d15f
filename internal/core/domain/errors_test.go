package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrEncryptedDocument", ErrEncryptedDocument},
		{"ErrEmbeddingService", ErrEmbeddingService},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrStoreUnavailable", ErrStoreUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrGenerationService", ErrGenerationService},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrConfiguration", ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinguishable(t *testing.T) {
	wrapped := fmt.Errorf("embed batch 2: %w", ErrRateLimited)

	assert.True(t, errors.Is(wrapped, ErrRateLimited))
	assert.False(t, errors.Is(wrapped, ErrEmbeddingService))
	assert.False(t, errors.Is(wrapped, ErrStoreUnavailable))
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("chunking.overlap", "must be smaller than %d", 750)

	assert.Equal(t, "invalid configuration: chunking.overlap: must be smaller than 750", err.Error())
	assert.True(t, errors.Is(err, ErrConfiguration))

	wrapped := fmt.Errorf("build pipeline: %w", err)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(wrapped, &cfgErr))
	assert.Equal(t, "chunking.overlap", cfgErr.Field)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", fmt.Errorf("x: %w", ErrRateLimited), true},
		{"store unavailable", ErrStoreUnavailable, true},
		{"embedding failure", ErrEmbeddingService, true},
		{"generation failure", ErrGenerationService, true},
		{"dimension mismatch", ErrDimensionMismatch, false},
		{"configuration", NewConfigurationError("a", "b"), false},
		{"unsupported format", ErrUnsupportedFormat, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

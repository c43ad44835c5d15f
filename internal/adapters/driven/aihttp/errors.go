// Package aihttp is the HTTP plumbing shared by the model provider adapters.
// Provider failures are mapped onto domain errors.
package aihttp

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// maxErrorBody caps how much of an error response is echoed back.
const maxErrorBody = 512

// StatusError builds the error for a non-2xx provider response. The result
// wraps sentinel, and also domain.ErrRateLimited on 429.
func StatusError(provider string, status int, body []byte, sentinel error) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s: status %d: %s: %w: %w", provider, status, msg, sentinel, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s: status %d: %s: %w", provider, status, msg, sentinel)
}

// TransportError wraps a failure to reach the provider.
func TransportError(provider string, err error, sentinel error) error {
	return fmt.Errorf("%s: send request: %w: %w", provider, sentinel, err)
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/DragX-cyber/Legal-Mate/internal/llm"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/telemetry"
)

const defaultRetryBaseDelay = 300 * time.Millisecond

// retryingClient wraps an llm.Client with bounded retries for transient
// failures. Only unavailability is retried; a reply that arrives is never
// retried regardless of its content.
type retryingClient struct {
	base       llm.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewRetryingClient(base llm.Client, maxRetries int, baseDelay time.Duration) llm.Client {
	if base == nil {
		return nil
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	return retryingClient{base: base, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (r retryingClient) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	var lastErr error
	delay := r.baseDelay
	for attempt := 0; ; attempt++ {
		resp, err := r.base.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !shouldRetryModel(err) || attempt >= r.maxRetries {
			break
		}
		telemetry.Info("llm retry", map[string]any{
			"attempt":  attempt + 1,
			"delay_ms": delay.Milliseconds(),
			"error":    err.Error(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		delay *= 2
	}
	return "", lastErr
}

func shouldRetryModel(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") ||
		strings.Contains(msg, "status: 5") ||
		strings.Contains(msg, "code: 5") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "internal error") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}
	return false
}

// ClassifyModelError folds any raw provider error into the service
// taxonomy. Context cancellation surfaces as unavailability so callers
// see one failure mode for "no usable reply arrived".
func ClassifyModelError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrMalformedOutput) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
}

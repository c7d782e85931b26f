package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

type attemptStateKey struct{}

// attemptState tracks the retry count of one Do call across attempts.
type attemptState struct {
	mutex      sync.Mutex
	retryCount int
	wait       time.Duration
}

func (s *attemptState) attempts() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.retryCount + 1
}

func withAttemptState(ctx context.Context, state *attemptState) context.Context {
	return context.WithValue(ctx, attemptStateKey{}, state)
}

func attemptStateFrom(ctx context.Context) *attemptState {
	state, _ := ctx.Value(attemptStateKey{}).(*attemptState)

	return state
}

// checkRetry retries a 429 while the retry count is below the budget, and a
// 401 only on the first attempt after clearing the cached access token.
// Transport errors and every other status are not retried.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return false, nil
	}

	state := attemptStateFrom(ctx)
	if state == nil {
		return false, nil
	}

	state.mutex.Lock()
	defer state.mutex.Unlock()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests && state.retryCount < c.maxRetries:
		state.wait = RateLimitWait(resp.Header.Get("Retry-After"), state.retryCount, c.waitUnit)
		if c.limiter != nil {
			c.limiter.RecordRateLimitError(state.wait)
		}

		c.logger.Debug("Rate limited, retrying", map[string]interface{}{
			"retry_count": state.retryCount,
			"wait":        state.wait.String(),
		})

		state.retryCount++

		return true, nil

	case resp.StatusCode == http.StatusUnauthorized && state.retryCount == 0:
		if c.tokenManager != nil {
			clearErr := c.tokenManager.ClearAccessToken(ctx)
			if clearErr != nil {
				return false, clearErr
			}
		}

		c.logger.Debug("Unauthorized, retrying with a new token", nil)

		state.wait = 0
		state.retryCount++

		return true, nil
	}

	return false, nil
}

// backoff returns the wait decided by checkRetry for this call.
func (c *Client) backoff(_, _ time.Duration, _ int, resp *http.Response) time.Duration {
	if resp == nil || resp.Request == nil {
		return 0
	}

	state := attemptStateFrom(resp.Request.Context())
	if state == nil {
		return 0
	}

	state.mutex.Lock()
	defer state.mutex.Unlock()

	return state.wait
}

// RateLimitWait is the wait before retrying a 429: Retry-After seconds (or
// the time until an HTTP date) when the header is usable, else 2^retryCount
// units.
func RateLimitWait(retryAfter string, retryCount int, unit time.Duration) time.Duration {
	retryAfter = strings.TrimSpace(retryAfter)

	if retryAfter != "" {
		seconds, err := strconv.Atoi(retryAfter)
		if err == nil && seconds >= 0 {
			return time.Duration(seconds) * unit
		}

		at, err := http.ParseTime(retryAfter)
		if err == nil {
			return max(time.Until(at), 0)
		}
	}

	return time.Duration(1<<retryCount) * unit
}

// leveledLogger adapts quoter.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger quoter.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keyValueFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keyValueFields(keysAndValues))
}

func keyValueFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = quoter.FormatValue(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

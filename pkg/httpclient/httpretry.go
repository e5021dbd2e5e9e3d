package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"familycal/internal/application/common"
)

const (
	defaultMaxAttempts = 3
	minBackoff         = 100 * time.Millisecond
	// maxRetryAfter дольше Retry-After от сервера не ждём
	maxRetryAfter = 10 * time.Second
)

// RetryClient повторяет идемпотентные запросы без тела при сетевых ошибках, 5xx и 429
type RetryClient struct {
	delegate    HTTPClient
	maxAttempts int
	// ShouldRetry решает, повторять ли запрос
	ShouldRetry func(*http.Response, error) bool
	// Backoff пауза перед попыткой attempt (с 1)
	Backoff func(attempt int) time.Duration
	logger  *zap.SugaredLogger
}

func NewRetryClient(delegate HTTPClient, maxAttempts int, logger *zap.SugaredLogger) *RetryClient {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &RetryClient{
		delegate:    delegate,
		maxAttempts: maxAttempts,
		ShouldRetry: retryable,
		Backoff:     common.NextBackoffWithJitter,
		logger:      logger,
	}
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

func (c *RetryClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if !replayable(req) {
		return c.delegate.Do(ctx, req)
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.delegate.Do(ctx, req.Clone(ctx))
		if attempt >= c.maxAttempts || !c.ShouldRetry(resp, err) {
			return resp, err
		}

		wait := max(c.Backoff(attempt), minBackoff)
		if ra := retryAfter(resp); ra > wait {
			wait = ra
		}
		status := 0
		if resp != nil {
			status = resp.StatusCode
			// соединение возвращается в пул только после вычитки тела
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		c.logger.Warnw("retrying request",
			"attempt", attempt, "backoff", wait.String(), "method", req.Method,
			"url", req.URL.Redacted(), "status", status, "err", err)

		if err := common.SleepCtx(ctx, wait); err != nil {
			return nil, fmt.Errorf("retry sleep canceled: %w", err)
		}
	}
}

// replayable повторять безопасно только GET/HEAD/OPTIONS без тела
func replayable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return req.Body == nil || req.Body == http.NoBody
	default:
		return false
	}
}

// retryAfter пауза из заголовка Retry-After (секунды или HTTP-дата)
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(v); err == nil {
		d = time.Until(t)
	}
	return min(max(d, 0), maxRetryAfter)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/iho/fxledger/internal/adapter/http/dto"
	"github.com/iho/fxledger/internal/domain"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status    int
	Code      string
	Message   string
	Retryable bool
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.Status)
}

// apiClient calls the fxledger HTTP API.
type apiClient struct {
	baseURL    string
	http       *http.Client
	maxElapsed time.Duration
	newBackOff func() backoff.BackOff
	onRetry    func(err error, wait time.Duration)
}

func newAPIClient(baseURL string, timeout, maxElapsed time.Duration) *apiClient {
	c := &apiClient{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: timeout},
		maxElapsed: maxElapsed,
		onRetry:    func(error, time.Duration) {},
	}
	c.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxElapsedTime = c.maxElapsed
		return b
	}
	return c
}

// do sends one logical request, retrying transient failures. Mutating calls
// carry a single Idempotency-Key across attempts.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var idempotencyKey string
	if method == http.MethodPost || method == http.MethodPut {
		idempotencyKey = uuid.NewString()
	}

	attempt := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			// the connection failed; the key makes a resend safe
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return raw, nil
		}

		apiErr := decodeAPIError(resp.StatusCode, raw)
		if apiErr.Retryable || apiErr.Code == domain.CodeTransientStorageFailure {
			return nil, apiErr
		}
		return nil, backoff.Permanent(apiErr)
	}

	raw, err := backoff.RetryNotifyWithData(attempt, backoff.WithContext(c.newBackOff(), ctx), c.onRetry)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *apiError {
	var resp dto.ErrorResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.Error == "" {
		return &apiError{Status: status, Code: http.StatusText(status), Message: string(bytes.TrimSpace(raw))}
	}
	return &apiError{Status: status, Code: resp.Error, Message: resp.Message, Retryable: resp.Retryable}
}

// isAPICode reports whether err is an API error with code.
func isAPICode(err error, code string) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

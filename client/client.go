package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var tracer = otel.Tracer("client")

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 10 * time.Second
	DefaultRetryPeriod    = 100 * time.Millisecond
	DefaultRetryMaxPeriod = time.Second
	DefaultMaxAttempts    = 3

	retryMultiplier  = 1.5
	defaultUserAgent = "orderdemo-client/1.0"
	maxErrorBody     = 4096
)

// RetryPolicy bounds how often a request is attempted. Intervals grow by
// 1.5x from Period and never exceed MaxPeriod. MaxAttempts counts the
// first attempt.
type RetryPolicy struct {
	Period      time.Duration
	MaxPeriod   time.Duration
	MaxAttempts int
}

type Options struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	FollowRedirects bool
	Retry           RetryPolicy
	UserAgent       string

	// Transport replaces the dialing transport built from the timeouts.
	Transport http.RoundTripper
	// OnRetry is called before each backoff sleep.
	OnRetry func(method, path string, err error, wait time.Duration)
}

func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  DefaultConnectTimeout,
		ReadTimeout:     DefaultReadTimeout,
		FollowRedirects: true,
		Retry: RetryPolicy{
			Period:      DefaultRetryPeriod,
			MaxPeriod:   DefaultRetryMaxPeriod,
			MaxAttempts: DefaultMaxAttempts,
		},
		UserAgent: defaultUserAgent,
	}
}

type Client struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	readTimeout time.Duration
	retry       RetryPolicy
	onRetry     func(method, path string, err error, wait time.Duration)
}

func New(baseURL string, opts Options) *Client {
	defaults := DefaultOptions()
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaults.ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaults.ReadTimeout
	}
	if opts.Retry.Period <= 0 {
		opts.Retry.Period = defaults.Retry.Period
	}
	if opts.Retry.MaxPeriod <= 0 {
		opts.Retry.MaxPeriod = defaults.Retry.MaxPeriod
	}
	if opts.Retry.MaxPeriod < opts.Retry.Period {
		opts.Retry.MaxPeriod = opts.Retry.Period
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = defaults.Retry.MaxAttempts
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.ConnectTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   opts.ConnectTimeout,
			ResponseHeaderTimeout: opts.ReadTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		}
	}

	slog.Info(
		"initialize client",
		slog.String("baseURL", baseURL),
		slog.Int("maxAttempts", opts.Retry.MaxAttempts),
		slog.String("module", "client"),
	)

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   opts.UserAgent,
		readTimeout: opts.ReadTimeout,
		retry:       opts.Retry,
		onRetry:     opts.OnRetry,
	}

	httpClient := &http.Client{Transport: transport}
	if !opts.FollowRedirects {
		httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	c.client = httpClient
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusError is a non-2xx response from the remote side.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status code: %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status code: %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// UnavailableError is returned once every attempt failed transiently.
type UnavailableError struct {
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// ReadTimeoutError reports a response body that was not read within the
// read timeout after its headers arrived.
type ReadTimeoutError struct {
	After time.Duration
}

func (e *ReadTimeoutError) Error() string {
	return fmt.Sprintf("response not read within %v", e.After)
}

func (e *ReadTimeoutError) Timeout() bool   { return true }
func (e *ReadTimeoutError) Temporary() bool { return true }

// IsStatus reports whether err carries a response with the given status.
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}
	return false
}

// IsTransient reports whether err is worth another attempt: dial and
// timeout failures, dropped connections and gateway statuses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.Period
	b.MaxInterval = c.retry.MaxPeriod
	b.Multiplier = retryMultiplier
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// HttpRequest performs method against path and decodes a JSON response
// into response when it is non-nil. body, when non-nil, is sent as JSON
// and resent unchanged on every attempt.
func (c *Client) HttpRequest(ctx context.Context, method, path string, body any, response any) error {
	ctx, span := tracer.Start(ctx, "Client.HttpRequest")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return errors.Wrap(err, "failed to marshal request body")
		}
	}

	attempts := 0
	operation := func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		attempts++
		err := c.do(ctx, method, path, payload, response)
		if err == nil {
			return struct{}{}, nil
		}
		if !IsTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(
			ctx, "request failed, retrying",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempts),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
			slog.String("module", "client"),
		)
		if c.onRetry != nil {
			c.onRetry(method, path, err, wait)
		}
	}

	_, err := backoff.Retry(
		ctx,
		operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(c.retry.MaxAttempts)),
		backoff.WithNotify(notify),
	)
	span.SetAttributes(attribute.Int("http.attempts", attempts))
	if err == nil {
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Wrap(ctxErr, "request aborted")
	}
	if IsTransient(err) {
		return &UnavailableError{Attempts: attempts, Err: err}
	}
	return err
}

// do runs one attempt. The read timeout bounds the wait for the response
// headers and, once they arrived, the read of the body.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, response any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	var timedOut atomic.Bool
	timer := time.AfterFunc(c.readTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	defer timer.Stop()

	err = c.readResponse(method, path, resp, response)
	var se *StatusError
	if err != nil && timedOut.Load() && !errors.As(err, &se) {
		return &ReadTimeoutError{After: c.readTimeout}
	}
	return err
}

func (c *Client) readResponse(method, path string, resp *http.Response, response any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(b)),
		}
	}

	if response == nil || resp.StatusCode == http.StatusNoContent {
		_, err := io.Copy(io.Discard, resp.Body)
		if err != nil {
			return errors.Wrap(err, "failed to drain response")
		}
		return nil
	}

	err := json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return errors.Wrap(err, "failed to decode response")
	}

	return nil
}

// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package activity talks to the authoritative activity backend that owns the
// daily practice streak, and optionally mirrors earned XP into a platform
// statistic.
package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matuskalis/speaksharp-gamification/pkg/gamification"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnexpectedStatus wraps every non-2xx response.
var ErrUnexpectedStatus = errors.New("activity: unexpected status")

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	maxErrorBody      = 512
)

// StreakAPI is the activity backend contract the engine depends on.
type StreakAPI interface {
	GetStreak(ctx context.Context, userID string) (StreakResponse, error)
	RecordActivity(ctx context.Context, userID string, req ActivityRequest) (StreakResponse, error)
}

// StreakResponse is the backend's streak record.
type StreakResponse struct {
	CurrentStreak  int               `json:"current_streak"`
	LongestStreak  int               `json:"longest_streak"`
	LastActiveDate gamification.Date `json:"last_active_date"`
}

// State converts the response into the local streak representation.
func (r StreakResponse) State() gamification.StreakState {
	return gamification.StreakState{
		Current:        r.CurrentStreak,
		Longest:        r.LongestStreak,
		LastActiveDate: r.LastActiveDate,
	}
}

// ActivityRequest describes one XP-earning event.
type ActivityRequest struct {
	ActivityDate gamification.Date `json:"activity_date"`
	XP           int               `json:"xp"`
}

type ClientConfig struct {
	BaseURL string
	// Token is sent as a bearer token when set.
	Token      string
	Timeout    time.Duration
	MaxRetries uint64
	// RetryInitialInterval overrides the first backoff delay; zero keeps the library default.
	RetryInitialInterval time.Duration
}

// Client is the HTTP implementation of StreakAPI. 5xx responses and transport
// errors are retried with exponential backoff; 4xx responses are not.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
}

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) GetStreak(ctx context.Context, userID string) (StreakResponse, error) {
	return c.do(ctx, http.MethodGet, c.userURL(userID, "streak"), nil)
}

func (c *Client) RecordActivity(ctx context.Context, userID string, req ActivityRequest) (StreakResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return StreakResponse{}, fmt.Errorf("failed to marshal activity: %w", err)
	}
	return c.do(ctx, http.MethodPost, c.userURL(userID, "activity"), body)
}

func (c *Client) userURL(userID, resource string) string {
	return fmt.Sprintf("%s/v1/users/%s/%s", c.cfg.BaseURL, url.PathEscape(userID), resource)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte) (StreakResponse, error) {
	var out StreakResponse

	op := func() error {
		resp, err := c.send(ctx, method, target, body)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		out = resp
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if c.cfg.RetryInitialInterval > 0 {
		b.InitialInterval = c.cfg.RetryInitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.MaxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		logrus.Warnf("activity request %s %s failed: %v, retrying in %v", method, target, err, wait)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return StreakResponse{}, err
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, method, target string, body []byte) (StreakResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return StreakResponse{}, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StreakResponse{}, fmt.Errorf("request %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return StreakResponse{}, backoff.Permanent(statusErr)
		}
		return StreakResponse{}, statusErr
	}

	var out StreakResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StreakResponse{}, backoff.Permanent(fmt.Errorf("failed to decode streak response: %w", err))
	}
	return out, nil
}

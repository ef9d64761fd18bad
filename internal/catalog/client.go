// Package catalog queries the tarkov.dev GraphQL price catalog.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/model"
	"github.com/ppiankov/pricelens/internal/util"
	"github.com/ppiankov/pricelens/internal/worker"
)

const (
	maxResponseBytes = 16 << 20
	namesMaxRetries  = 3
)

// sleepFunc is replaced in tests to skip backoff
var sleepFunc = time.Sleep

// ErrNotFound is returned when the catalog has no item with the requested name
var ErrNotFound = apperrors.ErrItemNotFound

// StatusError is a non-2xx HTTP response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Client talks to the catalog endpoint
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	limiter    *worker.Limiter
}

// NewClient creates a catalog client from configuration
func NewClient(cfg model.CatalogConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// ItemByName returns the first catalog item matching name in the given mode.
// Lookups are not retried; failures surface as CatalogLookupFailure.
func (c *Client) ItemByName(ctx context.Context, name string, mode model.GameMode) (*model.Item, error) {
	if mode == "" {
		mode = model.ModeRegular
	}

	var data struct {
		ItemsByName []model.Item `json:"itemsByName"`
	}
	vars := map[string]interface{}{"name": name, "gameMode": string(mode)}
	if err := c.do(ctx, itemsByNameQuery, vars, &data); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CatalogLookupFailure, "lookup %q failed", name)
	}

	if len(data.ItemsByName) == 0 {
		return nil, apperrors.Newf(apperrors.ItemNotFound, "no item named %q", name)
	}
	item := data.ItemsByName[0]
	return &item, nil
}

// ItemNames returns every full and short item name, retrying transient failures
// with exponential backoff
func (c *Client) ItemNames(ctx context.Context) ([]string, error) {
	var data struct {
		Items []struct {
			Name      string `json:"name"`
			ShortName string `json:"shortName"`
		} `json:"items"`
	}

	var err error
	for attempt := 0; attempt < namesMaxRetries; attempt++ {
		err = c.do(ctx, itemNamesQuery, nil, &data)
		if err == nil || !isRetryable(err) {
			break
		}
		if attempt < namesMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			sleepFunc(backoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch item names: %w", err)
	}

	names := make([]string, 0, 2*len(data.Items))
	for _, it := range data.Items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
		if it.ShortName != "" {
			names = append(names, it.ShortName)
		}
	}
	return names, nil
}

// Ping checks that the catalog answers queries
func (c *Client) Ping(ctx context.Context) error {
	var data json.RawMessage
	if err := c.do(ctx, pingQuery, nil, &data); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// do posts one GraphQL query and decodes its data field into out
func (c *Client) do(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var gql graphQLResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gql.Errors) > 0 {
		msgs := make([]string, len(gql.Errors))
		for i, e := range gql.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))
	}
	if len(gql.Data) == 0 || string(gql.Data) == "null" {
		return fmt.Errorf("empty response")
	}
	if err := json.Unmarshal(gql.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// isRetryable reports whether err is a transient failure: 5xx, 429, or a
// transport error such as a timeout or reset connection
func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	s := strings.ToLower(err.Error())
	return strings.HasPrefix(s, "fetch:") ||
		strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

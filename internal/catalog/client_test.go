package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/ppiankov/pricelens/internal/errors"
	"github.com/ppiankov/pricelens/internal/model"
)

func newTestClient(url string) *Client {
	return NewClient(model.CatalogConfig{
		Endpoint:  url,
		Timeout:   5 * time.Second,
		UserAgent: "test-agent",
	})
}

func noSleep(t *testing.T) {
	orig := sleepFunc
	sleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { sleepFunc = orig })
}

const bitcoinResponse = `{"data":{"itemsByName":[{
	"name":"Physical Bitcoin","shortName":"0.2BTC","width":1,"height":1,
	"avg24hPrice":480000,"basePrice":100000,"lastLowPrice":470000,
	"changeLast48hPercent":-1.5,"low24hPrice":460000,"high24hPrice":495000,
	"updated":"2026-10-16T10:00:00.000Z",
	"sellFor":[
		{"vendor":{"name":"Therapist"},"price":120000,"currency":"RUB"},
		{"vendor":{"name":"Flea Market"},"price":480000,"currency":"RUB"}
	]}]}}`

func TestItemByName(t *testing.T) {
	var got graphQLRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("expected user agent test-agent, got %q", ua)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, bitcoinResponse)
	}))
	defer server.Close()

	item, err := newTestClient(server.URL).ItemByName(context.Background(), "Physical Bitcoin", model.ModePVE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Variables["name"] != "Physical Bitcoin" {
		t.Errorf("expected name variable, got %v", got.Variables["name"])
	}
	if got.Variables["gameMode"] != "pve" {
		t.Errorf("expected gameMode pve, got %v", got.Variables["gameMode"])
	}
	if !strings.Contains(got.Query, "itemsByName") {
		t.Errorf("unexpected query: %s", got.Query)
	}

	if item.Name != "Physical Bitcoin" || item.ShortName != "0.2BTC" {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.FleaPrice() != 480000 {
		t.Errorf("expected flea price 480000, got %d", item.FleaPrice())
	}
	if item.Updated == nil {
		t.Error("expected updated timestamp")
	}
	best, ok := item.BestOffer()
	if !ok || best.Vendor.Name != "Flea Market" {
		t.Errorf("expected best offer Flea Market, got %+v", best)
	}
}

func TestItemByNameNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data":{"itemsByName":[]}}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ItemByName(context.Background(), "Nonexistent", model.ModeRegular)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemByNameNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestClient(server.URL).ItemByName(context.Background(), "LEDX", model.ModeRegular)
	if !errors.Is(err, apperrors.ErrCatalogLookupFailure) {
		t.Fatalf("expected CatalogLookupFailure, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestItemByNameGraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"errors":[{"message":"Unknown argument"}],"data":null}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ItemByName(context.Background(), "LEDX", model.ModeRegular)
	if !errors.Is(err, apperrors.ErrCatalogLookupFailure) {
		t.Fatalf("expected CatalogLookupFailure, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown argument") {
		t.Errorf("expected graphql message in error, got %v", err)
	}
}

func TestItemNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data":{"items":[
			{"name":"Colt M4A1 5.56x45 assault rifle","shortName":"M4A1"},
			{"name":"6B13 assault armor","shortName":""}
		]}}`)
	}))
	defer server.Close()

	names, err := newTestClient(server.URL).ItemNames(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Colt M4A1 5.56x45 assault rifle", "M4A1", "6B13 assault armor"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d: expected %q, got %q", i, want[i], names[i])
		}
	}
}

func TestItemNames_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, `{"data":{"items":[{"name":"Salewa first aid kit","shortName":"Salewa"}]}}`)
	}))
	defer server.Close()
	noSleep(t)

	names, err := newTestClient(server.URL).ItemNames(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(names) != 2 {
		t.Errorf("expected 2 names, got %v", names)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestItemNames_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, `{"data":{"items":[]}}`)
	}))
	defer server.Close()
	noSleep(t)

	if _, err := newTestClient(server.URL).ItemNames(context.Background()); err != nil {
		t.Fatalf("expected success after 429 retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts.Load())
	}
}

func TestItemNames_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestClient(server.URL).ItemNames(context.Background())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if got := err.Error(); got != "fetch item names: unexpected status: 404 Not Found" {
		t.Errorf("unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts.Load())
	}
}

func TestItemNames_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	if _, err := newTestClient(server.URL).ItemNames(context.Background()); err == nil {
		t.Fatal("expected error after all retries exhausted")
	}
	if attempts.Load() != namesMaxRetries {
		t.Errorf("expected %d attempts, got %d", namesMaxRetries, attempts.Load())
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data":{"itemsByName":[{"name":"Physical Bitcoin"}]}}`)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	server.Close()
	if err := newTestClient(server.URL).Ping(context.Background()); err == nil {
		t.Error("expected error from closed server")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err       error
		retryable bool
	}{
		{&StatusError{Code: 503, Status: "Service Unavailable"}, true},
		{&StatusError{Code: 500, Status: "Internal Server Error"}, true},
		{&StatusError{Code: 502, Status: "Bad Gateway"}, true},
		{&StatusError{Code: 429, Status: "Too Many Requests"}, true},
		{&StatusError{Code: 404, Status: "Not Found"}, false},
		{&StatusError{Code: 403, Status: "Forbidden"}, false},
		{fmt.Errorf("wrapped: %w", &StatusError{Code: 504}), true},
		{errors.New("fetch: connection refused"), true},
		{errors.New("fetch: dial tcp: i/o timeout"), true},
		{errors.New("create request: invalid URL"), false},
		{errors.New("decode response: unexpected EOF"), false},
		{errors.New("graphql: Syntax Error"), false},
	}

	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.retryable {
			t.Errorf("isRetryable(%q) = %v, want %v", tt.err, got, tt.retryable)
		}
	}
}

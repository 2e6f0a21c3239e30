package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StricklySoft/stricklysoft-reliability/internal/testutil"
	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// =============================================================================
// Config Tests
// =============================================================================

func TestWebhookConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     WebhookConfig
		wantErr bool
	}{
		{
			name:    "valid https URL",
			cfg:     WebhookConfig{URL: "https://hooks.example.com/alerts"},
			wantErr: false,
		},
		{
			name:    "valid http URL",
			cfg:     WebhookConfig{URL: "http://localhost:9000/hook"},
			wantErr: false,
		},
		{
			name:    "missing URL",
			cfg:     WebhookConfig{},
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			cfg:     WebhookConfig{URL: "ftp://example.com/hook"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			cfg:     WebhookConfig{URL: "https://example.com", Timeout: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				testutil.RequireErrorCategory(t, err, sserr.CategoryConfiguration)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultWebhookConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultWebhookConfig()
	assert.Equal(t, DefaultWebhookTimeout, cfg.Timeout)
	assert.Equal(t, uint32(DefaultWebhookMaxFailures), cfg.MaxFailures)
	assert.Equal(t, DefaultWebhookCooldown, cfg.Cooldown)
	assert.Error(t, cfg.Validate(), "default config has no URL and must not validate")
}

func TestSecret_Redacted(t *testing.T) {
	t.Parallel()

	s := Secret("hook-token-123")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", s.GoString())
	assert.Equal(t, "hook-token-123", s.Value())
}

func TestNewWebhook_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewWebhook(WebhookConfig{})
	require.Error(t, err)
	testutil.RequireErrorCategory(t, err, sserr.CategoryConfiguration)
}

// =============================================================================
// Delivery Tests
// =============================================================================

func TestWebhook_Send(t *testing.T) {
	t.Parallel()

	type received struct {
		payload webhookPayload
		auth    string
		content string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		got <- received{
			payload: p,
			auth:    r.Header.Get("Authorization"),
			content: r.Header.Get("Content-Type"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultWebhookConfig()
	cfg.URL = srv.URL
	cfg.AuthToken = Secret("hook-token-123")
	w, err := NewWebhook(cfg)
	require.NoError(t, err)

	require.NoError(t, w.Send(context.Background(), testAlert()))

	r := <-got
	assert.Equal(t, "high_error_rate", r.payload.Type)
	assert.Equal(t, "12 errors in the last minute", r.payload.Message)
	assert.Equal(t, "high", r.payload.Severity)
	assert.NotEmpty(t, r.payload.SentAt)
	assert.Equal(t, "Bearer hook-token-123", r.auth)
	assert.Equal(t, "application/json", r.content)
}

func TestWebhook_NoAuthHeaderWithoutToken(t *testing.T) {
	t.Parallel()

	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultWebhookConfig()
	cfg.URL = srv.URL
	w, err := NewWebhook(cfg)
	require.NoError(t, err)

	require.NoError(t, w.Send(context.Background(), testAlert()))
	assert.Empty(t, <-auth)
}

func TestWebhook_Non2xxResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultWebhookConfig()
	cfg.URL = srv.URL
	w, err := NewWebhook(cfg)
	require.NoError(t, err)

	err = w.Send(context.Background(), testAlert())
	require.Error(t, err)
	testutil.RequireErrorCategory(t, err, sserr.CategoryExternalService)

	var ssErr *sserr.Error
	require.ErrorAs(t, err, &ssErr)
	assert.Equal(t, 502, ssErr.Context["status"])
}

func TestWebhook_TransportFailure(t *testing.T) {
	t.Parallel()

	// A closed server refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	url := srv.URL
	srv.Close()

	cfg := DefaultWebhookConfig()
	cfg.URL = url
	cfg.Timeout = time.Second
	w, err := NewWebhook(cfg)
	require.NoError(t, err)

	err = w.Send(context.Background(), testAlert())
	require.Error(t, err)
	testutil.RequireErrorCategory(t, err, sserr.CategoryNetwork)
}

// =============================================================================
// Guard Breaker Tests
// =============================================================================

func TestWebhook_GuardTripsAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultWebhookConfig()
	cfg.URL = srv.URL
	cfg.MaxFailures = 2
	cfg.Cooldown = time.Hour
	w, err := NewWebhook(cfg)
	require.NoError(t, err)

	// First two failures reach the endpoint and trip the guard.
	for range 2 {
		err := w.Send(context.Background(), testAlert())
		require.Error(t, err)
		testutil.RequireErrorCategory(t, err, sserr.CategoryExternalService)
	}
	assert.Equal(t, int32(2), hits.Load())

	// Subsequent sends fail fast without touching the network.
	err = w.Send(context.Background(), testAlert())
	require.Error(t, err)
	testutil.RequireErrorCategory(t, err, sserr.CategoryExternalService)
	assert.Equal(t, int32(2), hits.Load(), "open guard must not hit the endpoint")
}

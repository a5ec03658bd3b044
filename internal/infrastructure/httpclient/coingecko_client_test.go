package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *coinGeckoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL + "/"
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	return NewCoinGeckoClient(opts, zap.NewNop()).(*coinGeckoClient)
}

func TestGetQuotes(t *testing.T) {
	var gotPath, gotIDs, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIDs = r.URL.Query().Get("ids")
		gotKey = r.Header.Get(apiKeyHeader)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"ethereum": {"usd": 3000.5, "last_updated_at": 1700000000},
			"bitcoin": {"usd": 60000},
			"pepe": {}
		}`))
	}, Options{APIKey: "secret"})

	quotes, err := c.GetQuotes(context.Background(), []string{"ethereum", "bitcoin", "pepe", "missing"})
	require.NoError(t, err)

	assert.Equal(t, "/simple/price", gotPath)
	assert.Equal(t, "ethereum,bitcoin,pepe,missing", gotIDs)
	assert.Equal(t, "secret", gotKey)

	require.Len(t, quotes, 2)
	assert.Equal(t, 3000.5, quotes["ethereum"].UsdRate)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), quotes["ethereum"].PublishedAt)
	assert.Equal(t, 60000.0, quotes["bitcoin"].UsdRate)
	assert.False(t, quotes["bitcoin"].PublishedAt.IsZero())
}

func TestGetQuotes_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		ids     []string
		maxIDs  int
		wantErr string
	}{
		{name: "empty ids", ids: nil, wantErr: "cannot be empty"},
		{name: "too many ids", ids: []string{"a", "b", "c"}, maxIDs: 2, wantErr: "exceeds max ids"},
		{name: "bad status", status: http.StatusTooManyRequests, body: `{"status":"throttled"}`, ids: []string{"a"}, wantErr: "status 429"},
		{name: "bad body", status: http.StatusOK, body: `not json`, ids: []string{"a"}, wantErr: "unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, Options{MaxIDsPerRequest: tt.maxIDs})

			_, err := c.GetQuotes(context.Background(), tt.ids)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetQuotes_CancelledWhileRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, Options{RequestsPerSecond: 0.001, Burst: 1})

	_, err := c.GetQuotes(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.GetQuotes(ctx, []string{"a"})
	assert.Error(t, err)
}

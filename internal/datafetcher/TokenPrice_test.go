package datafetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchUSDPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "APT", r.URL.Query().Get("fsym"))
		assert.Equal(t, "USD", r.URL.Query().Get("tsyms"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{"USD":8.42}`))
	}))
	defer server.Close()

	price, err := NewPriceClient(server.URL, "secret").FetchUSDPrice(context.Background(), " apt ")
	require.NoError(t, err)
	assert.InDelta(t, 8.42, price, 1e-9)
}

func TestFetchUSDPriceErrors(t *testing.T) {
	_, err := NewPriceClient("", "").FetchUSDPrice(context.Background(), "APT")
	assert.ErrorIs(t, err, ErrAPIConfiguration)

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-200", http.StatusTooManyRequests, `{}`},
		{"error payload", http.StatusOK, `{"Response":"Error","Message":"bad"}`},
		{"missing USD", http.StatusOK, `{"EUR":7.1}`},
		{"zero price", http.StatusOK, `{"USD":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewPriceClient(server.URL, "secret").FetchUSDPrice(context.Background(), "APT")
			assert.Error(t, err)
		})
	}
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comparo/backend/internal/infrastructure/config"
)

func TestHTTPFetcher_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"array", `[{"id":"a","brand":"Apple","model":"iPhone 15","priceCents":96900,"is5g":true}]`, 1},
		{"data wrapper", `{"data":[{"id":"a"},{"id":"b"}]}`, 2},
		{"phones wrapper", `{"phones":[{"id":"a"}]}`, 1},
		{"empty object", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			phones, err := NewHTTPFetcher(server.URL, time.Second).FetchPhones(context.Background())
			require.NoError(t, err)
			assert.Len(t, phones, tt.want)
		})
	}
}

func TestHTTPFetcher_DecodesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"a","brand":"Apple","model":"iPhone 15","priceCents":96900,"storageGb":128,"is5g":true}]`))
	}))
	defer server.Close()

	phones, err := NewHTTPFetcher(server.URL, time.Second).FetchPhones(context.Background())
	require.NoError(t, err)
	require.Len(t, phones, 1)
	assert.Equal(t, "Apple", phones[0].Brand)
	assert.Equal(t, int64(96900), phones[0].PriceCents)
	assert.Equal(t, 128, phones[0].StorageGB)
	assert.True(t, phones[0].Is5G)
}

func TestHTTPFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(server.URL+"/down", time.Second).FetchPhones(context.Background())
	assert.Error(t, err)

	_, err = NewHTTPFetcher(server.URL+"/broken", time.Second).FetchPhones(context.Background())
	assert.Error(t, err)
}

func TestProvideFetcher(t *testing.T) {
	f := ProvideFetcher(&config.CatalogConfig{})
	_, ok := f.(*StaticFetcher)
	require.True(t, ok)

	phones, err := f.FetchPhones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultPhones), len(phones))

	f = ProvideFetcher(&config.CatalogConfig{URL: "http://example.invalid/phones.json"})
	_, ok = f.(*HTTPFetcher)
	assert.True(t, ok)
}

package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "k-123", PageSize: 2}, nil)
}

func TestFetchAll_WalksEveryPage(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("x-api-key"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			fmt.Fprint(w, `{"products":[{"_id":"p1","title":"A","tags":["x"]},{"_id":"p2","title":"B"}],"page":1,"totalPages":2}`)
		case 2:
			fmt.Fprint(w, `{"products":[{"_id":"p3","title":"C","isTrending":true}],"page":2,"totalPages":2}`)
		default:
			t.Errorf("unexpected page %d", page)
		}
	})

	items, err := FetchAll[Product](testContext(t), client, ResourceProducts)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, []string{"x"}, items[0].Tags)
	assert.True(t, items[2].IsTrending)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchPage_ErrorStatusNoRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := FetchPage[Category](testContext(t), client, ResourceCategories, 1)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing key", `{"items":[],"page":1,"totalPages":1}`},
		{"wrong type", `{"ads":{"_id":"a"},"page":1,"totalPages":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})
			_, err := FetchPage[Ad](testContext(t), client, ResourceAds, 1)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestFetchAll_EmptyResource(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ads":[],"page":1,"totalPages":0}`)
	})

	items, err := FetchAll[Ad](testContext(t), client, ResourceAds)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource("ads")
	assert.True(t, ok)
	assert.Equal(t, ResourceAds, r)

	_, ok = ParseResource("orders")
	assert.False(t, ok)
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

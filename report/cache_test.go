package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/finledger/finledger/internal/billing"
)

func newRenderStub(t *testing.T, hits *int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 stub"))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestCachedRendererRendersOnce(t *testing.T) {
	hits := 0
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	renderer := NewCachedRenderer(NewRenderer(newRenderStub(t, &hits)), cache)

	doc := sampleDocument()
	doc.ID = 42

	first, err := renderer.Render(context.Background(), doc)
	require.NoError(t, err)
	second, err := renderer.Render(context.Background(), doc)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, hits, "second render should come from the cache")
}

func TestCachedRendererSkipsDrafts(t *testing.T) {
	hits := 0
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	renderer := NewCachedRenderer(NewRenderer(newRenderStub(t, &hits)), cache)

	doc := sampleDocument()
	doc.ID = 42
	doc.Status = billing.StatusDraft

	for i := 0; i < 2; i++ {
		_, err := renderer.Render(context.Background(), doc)
		require.NoError(t, err)
	}
	require.Equal(t, 2, hits, "drafts are never cached")
}

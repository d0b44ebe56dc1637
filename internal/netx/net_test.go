package netx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://cdn.example/a.png"))
	assert.True(t, IsURL("http://localhost/a.png"))
	assert.False(t, IsURL("./a.png"))
	assert.False(t, IsURL("ftp://x/a.png"))
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("image"))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	t.Run("success 200 OK", func(t *testing.T) {
		b, err := Download(ctx, srv.Client(), srv.URL+"/ok", 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("image"), b)
	})

	t.Run("limit", func(t *testing.T) {
		_, err := Download(ctx, srv.Client(), srv.URL+"/ok", 4)
		assert.ErrorContains(t, err, "exceeds limit")

		b, err := Download(ctx, srv.Client(), srv.URL+"/ok", 5)
		require.NoError(t, err)
		assert.Len(t, b, 5)
	})

	t.Run("non-200 includes body", func(t *testing.T) {
		_, err := Download(ctx, srv.Client(), srv.URL+"/missing", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "nope")
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := Download(ctx, srv.Client(), "http://[::1", 0)
		assert.Error(t, err)
	})
}

package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check that headers are set
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		assert.NotEmpty(t, r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("Accept-Language"), "fr-FR")
		assert.NotEmpty(t, r.Header.Get("Referer"))
		assert.Equal(t, "yes", r.Header.Get("X-Extra"))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Règlement du jeu</body></html>"))
	}))
	defer server.Close()

	status, body, err := NewHTTPFetcher(5*time.Second).Get(context.Background(), server.URL, map[string]string{"X-Extra": "yes"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Règlement du jeu")
}

func TestHTTPFetcherDecodesLatin1(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.WriteHeader(http.StatusOK)
		// "Règlement" with è encoded as 0xE8
		w.Write([]byte("<html><body>R\xe8glement</body></html>"))
	}))
	defer server.Close()

	_, body, err := NewHTTPFetcher(5*time.Second).Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, body, "Règlement")
}

func TestHTTPFetcherReturnsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	status, _, err := NewHTTPFetcher(5*time.Second).Get(context.Background(), server.URL, nil)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestHTTPFetcherInvalidURL(t *testing.T) {
	_, _, err := NewHTTPFetcher(time.Second).Get(context.Background(), "http://invalid.url.that.does.not.exist", nil)
	assert.Error(t, err)
}

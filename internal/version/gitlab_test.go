package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitLabSource_ListVersions(t *testing.T) {
	page, err := os.ReadFile("testdata/tags.html")
	require.NoError(t, err)

	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "/geant4/geant4/-/tags", r.URL.Path)
		_, _ = w.Write(page)
	}))
	defer server.Close()

	src := NewGitLabSource(server.Client(), server.URL+"/geant4/geant4/-/tags")
	versions, err := src.ListVersions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Mozilla/5.0", userAgent)
	assert.Equal(t,
		[]string{"11.3.2", "11.3.1", "11.3.0", "11.2.2", "11.2", "10.7.4"},
		Strings(SortDescending(versions)))
}

func TestGitLabSource_HTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType ErrorType
	}{
		{"not found", http.StatusNotFound, ErrTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrTypeRateLimit},
		{"server error", http.StatusBadGateway, ErrTypeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewGitLabSource(server.Client(), server.URL).ListVersions(context.Background())
			var resErr *ResolverError
			require.ErrorAs(t, err, &resErr)
			assert.Equal(t, tt.wantType, resErr.Type)
			assert.Equal(t, "gitlab", resErr.Source)
		})
	}
}

func TestGitLabSource_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewGitLabSource(http.DefaultClient, url).ListVersions(context.Background())
	var resErr *ResolverError
	require.ErrorAs(t, err, &resErr)
	assert.True(t, resErr.Type.IsNetwork())
}

func TestGitLabSource_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>No tags</body></html>"))
	}))
	defer server.Close()

	versions, err := NewGitLabSource(server.Client(), server.URL).ListVersions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, versions)
}

package util

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuman(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Human(tt.in), "Human(%d)", tt.in)
	}
}

func TestCleanupUnfinishedSnapshots(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "features.json")

	orphan, err := os.CreateTemp(dir, TempPattern("features.json"))
	require.NoError(t, err)
	require.NoError(t, orphan.Close())

	unrelated := []string{
		filepath.Join(dir, "notes"+TempSuffix),
		filepath.Join(dir, ".editor-swap"+TempSuffix),
		filepath.Join(dir, ".other.json-123"+TempSuffix),
		filepath.Join(dir, ".features.json-123.bak"),
	}
	for _, p := range append([]string{keep}, unrelated...) {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	CleanupUnfinishedSnapshots(keep)

	assert.NoFileExists(t, orphan.Name())
	assert.FileExists(t, keep)
	for _, p := range unrelated {
		assert.FileExists(t, p)
	}
}

func TestRemoveIfEmpty(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	full := filepath.Join(root, "full")
	require.NoError(t, os.Mkdir(empty, 0755))
	require.NoError(t, os.Mkdir(full, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "f"), nil, 0644))

	RemoveIfEmpty(empty)
	RemoveIfEmpty(full)

	assert.NoDirExists(t, empty)
	assert.DirExists(t, full)
}

func TestHTTPClientSetsUserAgent(t *testing.T) {
	var gotUA, gotAE string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAE = r.Header.Get("Accept-Encoding")
	}))
	defer srv.Close()

	client := NewHTTPClient(HTTPClientOptions{UserAgent: PickUserAgent("")})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Empty(t, gotAE)
	assert.Equal(t, "custom/1.0", PickUserAgent("custom/1.0"))
}

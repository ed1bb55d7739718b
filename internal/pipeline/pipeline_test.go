package pipeline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/featsnap/internal/extract"
	"github.com/brogergvhs/featsnap/internal/materialize"
	"github.com/brogergvhs/featsnap/internal/snapshot"
	"github.com/brogergvhs/featsnap/internal/source"
	"github.com/brogergvhs/featsnap/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "testdata/buttons-functions.html"

func testOptions(t *testing.T, url string) Options {
	t.Helper()
	log := ui.NewLoggerTo(io.Discard, true)
	return Options{
		OutputPath: filepath.Join(t.TempDir(), "_data", "features.json"),
		Acquirer:   source.New(source.Options{URL: url, Log: log}),
		Log:        log,
	}
}

func TestRunLocalSnapshot(t *testing.T) {
	opts := testOptions(t, "")
	opts.SnapshotPath = fixture

	rep, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, extract.StrategyStrict, rep.Strategy)
	assert.Equal(t, materialize.MethodLiteral, rep.Method)
	assert.Equal(t, 3, rep.Fragments)
	assert.Equal(t, 2, rep.Categories)
	assert.Equal(t, 4, rep.Scenarios)
	assert.Equal(t, 2, rep.YearModels)
	assert.False(t, rep.Partial)
	assert.False(t, rep.Degraded)
	assert.False(t, rep.Remote)

	got, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/features.golden.json")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
	assert.Equal(t, len(got), rep.Written)
}

func TestRunIsIdempotent(t *testing.T) {
	opts := testOptions(t, "")
	opts.SnapshotPath = fixture

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	second, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunRemote(t *testing.T) {
	page, err := os.ReadFile(fixture)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}))
	defer srv.Close()

	opts := testOptions(t, srv.URL)
	rep, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, rep.Remote)
	assert.Equal(t, srv.URL, rep.Origin)
	assert.Equal(t, 4, rep.Scenarios)
}

func TestRunPartial(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.html")
	html := `<quiz-element class="quiz-outer-wrapper">
<script>window.yearNameCombos = ["Model X 2022"];</script>
<script>window.quizFunctionData = {};</script>
</quiz-element>`
	require.NoError(t, os.WriteFile(in, []byte(html), 0644))

	opts := testOptions(t, "")
	opts.SnapshotPath = in

	rep, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, rep.Partial)
	assert.True(t, rep.Degraded)
	assert.Equal(t, 0, rep.Categories)

	got, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"yearModels\": [\n    \"Model X 2022\"\n  ],\n  \"categories\": []\n}", string(got))
}

func TestRunFatalErrorsWriteNothing(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer blocked.Close()

	dir := t.TempDir()
	noRegion := filepath.Join(dir, "empty.html")
	require.NoError(t, os.WriteFile(noRegion, []byte("<html><body><p>maintenance</p></body></html>"), 0644))
	noMarker := filepath.Join(dir, "nomarker.html")
	require.NoError(t, os.WriteFile(noMarker, []byte(`<quiz-element><script>window.quizFunctionData = {};</script></quiz-element>`), 0644))
	badScript := filepath.Join(dir, "bad.html")
	require.NoError(t, os.WriteFile(badScript, []byte(`<quiz-element><script>window.yearNameCombos = [; window.quizFunctionData = {};</script></quiz-element>`), 0644))
	badEntry := filepath.Join(dir, "badentry.html")
	require.NoError(t, os.WriteFile(badEntry, []byte(`<quiz-element><script>window.yearNameCombos = []; window.quizFunctionData = {"x": {}};</script></quiz-element>`), 0644))

	tests := []struct {
		name     string
		url      string
		snapshot string
		want     error
	}{
		{"missing snapshot", "", filepath.Join(dir, "nope.html"), source.ErrNotFound},
		{"blocked remote", blocked.URL, "", source.ErrBlockedByProtection},
		{"no region", "", noRegion, extract.ErrExtractionFailed},
		{"no year marker", "", noMarker, extract.ErrMissingMarker},
		{"syntax error", "", badScript, materialize.ErrParseFailed},
		{"non numeric key", "", badEntry, materialize.ErrParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, tt.url)
			opts.SnapshotPath = tt.snapshot

			rep, err := Run(context.Background(), opts)
			require.Error(t, err)
			assert.Nil(t, rep)
			assert.ErrorIs(t, err, tt.want)

			_, statErr := os.Stat(opts.OutputPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRunDefaultsOutputPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	abs, err := filepath.Abs(fixture)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	opts := testOptions(t, "")
	opts.SnapshotPath = abs
	opts.OutputPath = ""

	rep, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, snapshot.DefaultPath, rep.OutputPath)

	_, err = os.Stat(filepath.Join(dir, snapshot.DefaultPath))
	assert.NoError(t, err)
}

package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, false)

	log.Debugf("hidden %d", 1)
	log.Infof("located region via %s", "strict")
	log.Warnf("catalog is empty")
	log.Errorf("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO] located region via strict\n")
	assert.Contains(t, out, "[WARN] catalog is empty\n")
	assert.Contains(t, out, "[ERROR] boom\n")

	buf.Reset()
	NewLoggerTo(&buf, true).Debugf("shown %d", 2)
	assert.Equal(t, "[DEBUG] shown 2\n", buf.String())
}

func TestStatsPrint(t *testing.T) {
	var buf bytes.Buffer
	Stats{Categories: 2, Scenarios: 4, YearModels: 3, Bytes: 2048}.Print(&buf)

	assert.Equal(t, "Statistics:\n"+
		"  - 2 categories\n"+
		"  - 4 total features\n"+
		"  - 3 car model/year combinations\n"+
		"  - 2.0 KB of markup\n", buf.String())

	buf.Reset()
	Stats{YearModels: 1, Partial: true}.Print(&buf)
	assert.Contains(t, buf.String(), "0 categories (data might be dynamically loaded)")
	assert.NotContains(t, buf.String(), "of markup")
}

func TestProgressTrack(t *testing.T) {
	pm := NewProgressManagerTo(io.Discard)

	body := strings.Repeat("x", 10_000)
	rc := pm.Track("Fetch", strings.NewReader(body), -1)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	pm.Close()

	assert.Equal(t, body, string(got))
}

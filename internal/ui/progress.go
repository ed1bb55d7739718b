package ui

import (
	"io"
	"os"
	"time"

	"github.com/brogergvhs/featsnap/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// MPBProgressManager renders one bar per tracked transfer.
type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *MPBProgressManager {
	return NewProgressManagerTo(os.Stdout)
}

func NewProgressManagerTo(w io.Writer) *MPBProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(w),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

// Track wraps r so every byte read advances a bar labelled with prefix.
// size may be unknown (<= 0); the bar is completed when the returned reader
// is closed.
func (pm *MPBProgressManager) Track(prefix string, r io.Reader, size int64) io.ReadCloser {
	total := size
	if total < 0 {
		total = 0
	}

	start := time.Now()
	bar := pm.p.New(
		total,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				return util.Human(s.Current)
			}),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + time.Since(start).Round(100*time.Millisecond).String()
			}),
		),
	)

	return &trackedReader{ReadCloser: bar.ProxyReader(r), bar: bar}
}

type trackedReader struct {
	io.ReadCloser
	bar *mpb.Bar
}

func (t *trackedReader) Close() error {
	err := t.ReadCloser.Close()
	t.bar.SetTotal(-1, true)
	return err
}

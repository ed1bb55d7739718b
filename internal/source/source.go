package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultURL     = "https://www.enhauto.com/pages/buttons-functions"
	DefaultTimeout = 15 * time.Second
)

// Page is raw markup plus where it came from.
type Page struct {
	HTML    string
	Origin  string
	Remote  bool
	Status  int
	Charset string
	Bytes   int64
}

// Tracker observes a response body while it is read.
type Tracker interface {
	Track(label string, r io.Reader, size int64) io.ReadCloser
}

type Options struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Headers map[string]string
	Tracker Tracker
	Log     interface {
		Debugf(string, ...any)
	}
}

type Acquirer struct {
	http    *resty.Client
	url     string
	timeout time.Duration
	headers map[string]string
	tracker Tracker
	log     interface{ Debugf(string, ...any) }
}

func New(opts Options) *Acquirer {
	hc := opts.Client
	if hc == nil {
		hc = &http.Client{}
	}

	a := &Acquirer{
		http:    resty.NewWithClient(hc),
		url:     opts.URL,
		timeout: opts.Timeout,
		headers: opts.Headers,
		tracker: opts.Tracker,
		log:     opts.Log,
	}

	if a.url == "" {
		a.url = DefaultURL
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}

	return a
}

func (a *Acquirer) URL() string {
	return a.url
}

// Acquire reads the snapshot at path, or fetches the remote page when path
// is empty.
func (a *Acquirer) Acquire(ctx context.Context, path string) (*Page, error) {
	if path != "" {
		return a.readLocal(path)
	}

	return a.fetchRemote(ctx)
}

func (a *Acquirer) readLocal(path string) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}

	text, cs, err := toUTF8(data, "")
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	a.debugf("Read %d bytes from %s (charset=%s)", len(data), path, cs)

	return &Page{
		HTML:    text,
		Origin:  path,
		Charset: cs,
		Bytes:   int64(len(data)),
	}, nil
}

func (a *Acquirer) fetchRemote(ctx context.Context) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := a.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	for k, v := range a.headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(a.url)
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	raw := resp.RawBody()
	defer func() {
		if cerr := raw.Close(); cerr != nil {
			a.debugf("Warning: failed to close response body for %s: %v", a.url, cerr)
		}
	}()

	status := resp.StatusCode()
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		return nil, fmt.Errorf("%w (HTTP %d)", ErrBlockedByProtection, status)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrNetwork, status, a.url)
	}

	var body io.Reader = raw
	if a.tracker != nil {
		tracked := a.tracker.Track("Fetch", raw, resp.RawResponse.ContentLength)
		defer func() { _ = tracked.Close() }()
		body = tracked
	}

	// gzip and zlib readers consume the stream header here, so a stalled
	// body can already hit the deadline.
	decoded, err := decodeBody(body, resp.Header().Get("Content-Encoding"))
	if err != nil {
		return nil, a.classify(ctx, err)
	}
	defer func() { _ = decoded.Close() }()

	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, a.classify(ctx, err)
	}

	text, cs, err := toUTF8(data, resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrNetwork, err)
	}

	if IsChallenge(status, text) {
		return nil, fmt.Errorf("%w (challenge page served)", ErrBlockedByProtection)
	}

	a.debugf("Fetched %d bytes from %s (charset=%s)", len(data), a.url, cs)

	return &Page{
		HTML:    text,
		Origin:  a.url,
		Remote:  true,
		Status:  status,
		Charset: cs,
		Bytes:   int64(len(data)),
	}, nil
}

func (a *Acquirer) classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, a.timeout, err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w after %s: %v", ErrTimeout, a.timeout, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func (a *Acquirer) debugf(format string, args ...any) {
	if a.log != nil {
		a.log.Debugf(format, args...)
	}
}

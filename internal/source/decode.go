package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// decodeBody undoes the Content-Encoding of a response body.
func decodeBody(r io.Reader, encoding string) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return io.NopCloser(r), nil

	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil

	case "deflate":
		// "deflate" is zlib-wrapped per RFC 9110, but plenty of servers send
		// a raw DEFLATE stream instead.
		br := bufio.NewReader(r)
		head, _ := br.Peek(2)
		if isZlibHeader(head) {
			zr, err := zlib.NewReader(br)
			if err != nil {
				return nil, fmt.Errorf("deflate: %w", err)
			}
			return zr, nil
		}
		return flate.NewReader(br), nil

	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

func isZlibHeader(b []byte) bool {
	if len(b) < 2 {
		return false
	}

	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

// toUTF8 converts markup to UTF-8. The Content-Type header wins when it names
// a charset; otherwise the encoding is guessed from the bytes.
func toUTF8(data []byte, contentType string) (string, string, error) {
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	if contentType != "" && strings.Contains(strings.ToLower(contentType), "charset=") {
		r, err := charset.NewReader(bytes.NewReader(data), contentType)
		if err == nil {
			out, err := io.ReadAll(r)
			if err != nil {
				return "", "", err
			}
			return string(out), contentType, nil
		}
	}

	name := detectCharset(data)
	r, err := charset.NewReaderLabel(name, bytes.NewReader(data))
	if err != nil {
		// Unknown label: keep the bytes, invalid sequences become U+FFFD
		// once the string is ranged over.
		return string(data), name, nil
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}

	return string(out), name, nil
}

func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}

	return strings.ToLower(result.Charset)
}

// challengeMarkers are fragments characteristic of bot-verification
// interstitials.
var challengeMarkers = []string{
	"Attention Required!",
	"Just a moment...",
	"cf-browser-verification",
	"window._cf_chl_opt",
	"Checking your browser before accessing",
}

// IsChallenge reports whether a response is a bot-protection interstitial
// rather than the real page.
func IsChallenge(status int, body string) bool {
	if status == 403 || status == 503 {
		return true
	}

	for _, m := range challengeMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}

	return false
}

// internal/words/load.go
//
// Dictionary loaders. Every loader builds a complete set first and swaps it in
// only on success, so a failed load leaves the previous words untouched.
//
// Sources:
//   - Load(reader, format): newline-delimited text or a JSON array of strings.
//   - LoadFile(path):       format picked by extension (.json → JSON).
//   - LoadURL(ctx, url):    fetched with retries; format sniffed from the body.
//   - LoadEmbedded():       the small built-in list from assets.
//
// Text sources may carry a UTF-8 or UTF-16 byte order mark.

package words

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dmitryfil/da-word-rain/assets"
)

// Format selects how a source is parsed.
type Format int

const (
	// FormatAuto treats the source as JSON if its first non-space byte is '['.
	FormatAuto Format = iota
	FormatText
	FormatJSON
)

// maxLineLen bounds a single line of a text word list; longer lines are dropped.
const maxLineLen = 1 << 20

// Parse reads a word source into a normalized set. Individual malformed
// entries are dropped; only a source-level failure is an error.
func Parse(r io.Reader, format Format) (map[string]struct{}, error) {
	b, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("read word source: %w", err)
	}
	if format == FormatAuto {
		format = sniff(b)
	}

	var list []string
	switch format {
	case FormatJSON:
		list, err = parseJSON(b)
	default:
		list, err = parseLines(b)
	}
	if err != nil {
		return nil, err
	}
	set := toSet(list)
	if len(set) == 0 {
		return nil, ErrEmptyDictionary
	}
	return set, nil
}

func sniff(b []byte) Format {
	if t := bytes.TrimLeft(b, " \t\r\n"); len(t) > 0 && t[0] == '[' {
		return FormatJSON
	}
	return FormatText
}

// parseLines splits one word per line (LF or CRLF).
func parseLines(b []byte) ([]string, error) {
	var out []string
	for line := range bytes.Lines(b) {
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > maxLineLen {
			continue
		}
		out = append(out, string(line))
	}
	return out, nil
}

// parseJSON accepts an array of arbitrary values; non-strings are stringified
// and then fail normalization like any other junk entry.
func parseJSON(b []byte) ([]string, error) {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse json word list: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch w := v.(type) {
		case string:
			out = append(out, w)
		case nil:
		default:
			out = append(out, fmt.Sprint(w))
		}
	}
	return out, nil
}

// Load replaces the dictionary with the words read from r and returns the new size.
func (d *Dictionary) Load(r io.Reader, format Format) (int, error) {
	set, err := Parse(r, format)
	if err != nil {
		return 0, err
	}
	d.replace(set)
	return len(set), nil
}

// LoadFile replaces the dictionary with the word list at path.
func (d *Dictionary) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	format := FormatText
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	n, err := d.Load(f, format)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("words", n).Msg("dictionary loaded")
	return n, nil
}

// LoadURL fetches a word list over HTTP and replaces the dictionary with it.
// Network errors and 5xx responses are retried; 4xx responses are not.
func (d *Dictionary) LoadURL(ctx context.Context, client *http.Client, url string) (int, error) {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := retry.DoWithData(
		func() ([]byte, error) { return fetch(ctx, client, url) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("url", url).Msg("dictionary fetch failed, retrying")
		}),
	)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			log.Error().Str("url", url).Msg("dictionary URL not found; check DICT_URL")
		}
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	n, err := d.Load(bytes.NewReader(body), FormatAuto)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", url, err)
	}
	log.Info().Str("url", url).Int("words", n).Msg("dictionary loaded")
	return n, nil
}

// errHTTPStatus carries a non-2xx response status.
type errHTTPStatus struct{ code int }

func (e errHTTPStatus) Error() string { return fmt.Sprintf("HTTP %d", e.code) }

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := errHTTPStatus{code: resp.StatusCode}
		if resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// LoadEmbedded replaces the dictionary with the built-in word list.
func (d *Dictionary) LoadEmbedded() (int, error) {
	list, err := assets.WordList()
	if err != nil {
		return 0, err
	}
	set := toSet(list)
	if len(set) == 0 {
		return 0, ErrEmptyDictionary
	}
	d.replace(set)
	log.Info().Int("words", len(set)).Msg("dictionary loaded from embedded list")
	return len(set), nil
}

// Source describes where a dictionary comes from. The first non-empty field wins.
type Source struct {
	File string
	URL  string
}

func (s Source) String() string {
	switch {
	case s.File != "":
		return s.File
	case s.URL != "":
		return s.URL
	}
	return "embedded"
}

// LoadSource loads from s, falling back to the embedded list when s is empty.
func (d *Dictionary) LoadSource(ctx context.Context, s Source) (int, error) {
	switch {
	case s.File != "":
		return d.LoadFile(s.File)
	case s.URL != "":
		return d.LoadURL(ctx, nil, s.URL)
	}
	return d.LoadEmbedded()
}

// isStatus reports whether err came from an HTTP response with the given status.
func isStatus(err error, code int) bool {
	var se errHTTPStatus
	return errors.As(err, &se) && se.code == code
}

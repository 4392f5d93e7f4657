// internal/words/words.go
//
// Dictionary: the normalized word set submitted words are validated against.
//
// Responsibilities:
//   - Normalize words (trim, upper-case) and keep only A–Z words of 2+ letters.
//   - Answer membership queries case-insensitively.
//   - Replace the whole set atomically on (re)load; see load.go.
//
// A Dictionary is shared read-mostly between sessions; reloads take the
// write lock only for the final swap.

package words

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// MinWordLen is the shortest word the dictionary accepts.
const MinWordLen = 2

// ErrEmptyDictionary is returned by loaders whose source held no usable words.
var ErrEmptyDictionary = errors.New("words: no valid words in source")

// Dictionary is a set of upper-case words.
type Dictionary struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{words: make(map[string]struct{})}
}

// Normalize trims and upper-cases w and reports whether the result is an
// acceptable dictionary word.
func Normalize(w string) (string, bool) {
	n := strings.ToUpper(strings.TrimSpace(w))
	if len(n) < MinWordLen || !isAlpha(n) {
		return "", false
	}
	return n, true
}

// isAlpha reports whether s is all upper-case ASCII letters.
func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Has reports whether w is in the dictionary, ignoring case.
func (d *Dictionary) Has(w string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.words[strings.ToUpper(w)]
	return ok
}

// Add inserts w if it normalizes to a valid word and reports whether it was accepted.
func (d *Dictionary) Add(w string) bool {
	n, ok := Normalize(w)
	if !ok {
		return false
	}
	d.mu.Lock()
	d.words[n] = struct{}{}
	d.mu.Unlock()
	return true
}

// Size returns the number of distinct words.
func (d *Dictionary) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// Clear removes every word.
func (d *Dictionary) Clear() {
	d.mu.Lock()
	d.words = make(map[string]struct{})
	d.mu.Unlock()
}

// Words returns every word in sorted order.
func (d *Dictionary) Words() []string {
	d.mu.RLock()
	out := lo.Keys(d.words)
	d.mu.RUnlock()
	slices.Sort(out)
	return out
}

// replace swaps in a fully built set.
func (d *Dictionary) replace(set map[string]struct{}) {
	d.mu.Lock()
	d.words = set
	d.mu.Unlock()
}

// toSet normalizes a list of raw entries into a lookup set, dropping the
// entries that are not valid words.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		if n, ok := Normalize(w); ok {
			m[n] = struct{}{}
		}
	}
	return m
}

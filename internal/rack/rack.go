// Package rack holds the player's collected tiles.
//
// A Rack is a bounded multiset of tiles. Word composition goes through
// SelectTilesForWord, which claims one physical tile per letter of the word,
// preferring the most valuable tile when a letter is held more than once.
package rack

import (
	"errors"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitryfil/da-word-rain/internal/tiles"
)

// ErrRackFull is returned by AddTile when the rack is at capacity.
// Callers are expected to check IsFull first.
var ErrRackFull = errors.New("rack is full")

// Tile is a collected tile: a tiles.Tile without kinematics.
type Tile struct {
	ID     string       `json:"id"`
	Letter tiles.Letter `json:"letter"`
	Points int          `json:"points"`
	Mult   int          `json:"mult"`
	Green  bool         `json:"green"`
}

// FromTile drops the kinematic fields of a falling tile.
func FromTile(t *tiles.Tile) Tile {
	return Tile{
		ID:     t.ID,
		Letter: t.Letter,
		Points: t.Points,
		Mult:   t.Mult,
		Green:  t.Green,
	}
}

// Multiplier returns Mult, treating an unset multiplier as 1.
func (t Tile) Multiplier() int {
	if t.Mult <= 0 {
		return 1
	}
	return t.Mult
}

// Value is the tile's effective point value.
func (t Tile) Value() int { return t.Points * t.Multiplier() }

// priority ranks tiles for word selection: triple > double > green > plain.
func (t Tile) priority() int {
	switch {
	case t.Mult == 3:
		return 3
	case t.Mult == 2:
		return 2
	case t.Green:
		return 1
	}
	return 0
}

// Shuffler is the randomness a rack needs; tiles.Source satisfies it.
type Shuffler interface {
	Intn(n int) int
}

// Rack is a bounded, ordered collection of tiles.
type Rack struct {
	tiles []Tile
	max   int
	rng   Shuffler
}

// New returns an empty rack holding at most capacity tiles.
func New(capacity int, rng Shuffler) *Rack {
	return &Rack{
		tiles: make([]Tile, 0, capacity),
		max:   capacity,
		rng:   rng,
	}
}

func (r *Rack) Size() int     { return len(r.tiles) }
func (r *Rack) Capacity() int { return r.max }
func (r *Rack) IsFull() bool  { return len(r.tiles) >= r.max }
func (r *Rack) IsEmpty() bool { return len(r.tiles) == 0 }

// Tiles returns a copy of the rack contents in display order.
func (r *Rack) Tiles() []Tile { return slices.Clone(r.tiles) }

// AddTile appends a rack view of t.
func (r *Rack) AddTile(t *tiles.Tile) error {
	if r.IsFull() {
		return ErrRackFull
	}
	r.tiles = append(r.tiles, FromTile(t))
	return nil
}

// RemoveTiles removes and returns every tile whose id is in ids.
// Unknown ids are ignored. Remaining tiles keep their order.
func (r *Rack) RemoveTiles(ids []string) []Tile {
	drop := lo.Keyify(ids)
	removed := make([]Tile, 0, len(ids))
	kept := r.tiles[:0]
	for _, t := range r.tiles {
		if _, ok := drop[t.ID]; ok {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	r.tiles = kept
	return removed
}

// Clear empties the rack.
func (r *Rack) Clear() { r.tiles = r.tiles[:0] }

// Alphabetize stable-sorts the rack by letter.
func (r *Rack) Alphabetize() {
	slices.SortStableFunc(r.tiles, func(a, b Tile) int {
		return int(a.Letter) - int(b.Letter)
	})
}

// Shuffle applies a Fisher–Yates permutation.
func (r *Rack) Shuffle() {
	for i := len(r.tiles) - 1; i > 0; i-- {
		j := r.rng.Intn(i + 1)
		r.tiles[i], r.tiles[j] = r.tiles[j], r.tiles[i]
	}
}

// LetterCounts is the letter histogram of the rack.
func (r *Rack) LetterCounts() map[tiles.Letter]int {
	return lo.CountValuesBy(r.tiles, func(t Tile) tiles.Letter { return t.Letter })
}

// wordCounts is the letter histogram of an upper-cased word. Bytes outside
// A–Z are counted too, so they can never be satisfied by the rack.
func wordCounts(word string) map[tiles.Letter]int {
	counts := make(map[tiles.Letter]int, len(word))
	for i := 0; i < len(word); i++ {
		counts[tiles.Letter(word[i])]++
	}
	return counts
}

// CanFormWord reports whether the rack holds every letter of word, with multiplicity.
func (r *Rack) CanFormWord(word string) bool {
	have := r.LetterCounts()
	for l, need := range wordCounts(strings.ToUpper(word)) {
		if have[l] < need {
			return false
		}
	}
	return true
}

// SelectTilesForWord claims one rack tile per letter of word, aligned with the
// word's letters. It returns nil unless CanFormWord(word).
//
// When a letter is held more than once the best tile wins: triple, double,
// green, plain; then higher Value; then lower id.
func (r *Rack) SelectTilesForWord(word string) []Tile {
	if !r.CanFormWord(word) {
		return nil
	}
	word = strings.ToUpper(word)

	taken := make(map[string]bool, len(word))
	used := make([]Tile, 0, len(word))
	for i := 0; i < len(word); i++ {
		l := tiles.Letter(word[i])
		candidates := lo.Filter(r.tiles, func(t Tile, _ int) bool {
			return t.Letter == l && !taken[t.ID]
		})
		if len(candidates) == 0 {
			return nil
		}
		best := slices.MinFunc(candidates, better)
		taken[best.ID] = true
		used = append(used, best)
	}
	return used
}

// better orders a before b when a should be spent first.
func better(a, b Tile) int {
	if d := b.priority() - a.priority(); d != 0 {
		return d
	}
	if d := b.Value() - a.Value(); d != 0 {
		return d
	}
	return strings.Compare(a.ID, b.ID)
}

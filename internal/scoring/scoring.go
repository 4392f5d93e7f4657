// Package scoring turns a submitted word and the rack tiles spent on it into
// score and time deltas. It is stateless apart from the lexicon it consults.
package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/dmitryfil/da-word-rain/internal/rack"
)

const (
	// BingoLength is the word length that earns the bingo bonus.
	BingoLength = 7
	// BingoBonus is the flat bonus for a valid bingo.
	BingoBonus = 50
	// GreenSeconds is the time swing per green tile.
	GreenSeconds = 5
)

// Lexicon is the membership oracle words are validated against.
type Lexicon interface {
	Has(word string) bool
}

// Result is the outcome of one word submission.
type Result struct {
	Word         string      `json:"word"`
	IsValid      bool        `json:"isValid"`
	PointsScored int         `json:"pointsScored"` // signed
	BonusPoints  int         `json:"bonusPoints"`
	TimeDelta    int         `json:"timeDelta"` // signed seconds
	UsedTiles    []rack.Tile `json:"usedTiles"`
}

// Total is the score change the result applies.
func (r Result) Total() int { return r.PointsScored + r.BonusPoints }

// Scorer evaluates words against a lexicon.
type Scorer struct {
	lex Lexicon
}

// New returns a Scorer backed by lex.
func New(lex Lexicon) *Scorer {
	return &Scorer{lex: lex}
}

// TilePoints sums points × multiplier over ts.
func TilePoints(ts []rack.Tile) int {
	return lo.SumBy(ts, func(t rack.Tile) int { return t.Value() })
}

// BingoBonusFor returns the bonus for a word of length n: 50 for exactly 7 letters.
func BingoBonusFor(n int) int {
	if n == BingoLength {
		return BingoBonus
	}
	return 0
}

// TimeBonus is ±5 seconds per green tile: gained on a valid word, lost on an invalid one.
func TimeBonus(ts []rack.Tile, valid bool) int {
	greens := lo.CountBy(ts, func(t rack.Tile) bool { return t.Green })
	if valid {
		return greens * GreenSeconds
	}
	return -greens * GreenSeconds
}

// Evaluate scores word played with ts. An invalid word costs exactly what it
// would have earned, without bonus.
func (s *Scorer) Evaluate(word string, ts []rack.Tile) Result {
	word = strings.ToUpper(word)
	valid := s.lex.Has(word)
	raw := TilePoints(ts)

	res := Result{
		Word:      word,
		IsValid:   valid,
		TimeDelta: TimeBonus(ts, valid),
		UsedTiles: slices.Clone(ts),
	}
	if valid {
		res.PointsScored = raw
		res.BonusPoints = BingoBonusFor(len(word))
	} else {
		res.PointsScored = -raw
	}
	return res
}

// signed renders n with a leading + or a typographic minus.
func signed(n int) string {
	if n < 0 {
		return fmt.Sprintf("−%d", -n)
	}
	return fmt.Sprintf("+%d", n)
}

// FormatScoreChange renders a log line such as "✅ QUARTZ +24 points".
func FormatScoreChange(r Result) string {
	glyph := "❌"
	if r.IsValid {
		glyph = "✅"
	}
	bonus := ""
	if r.BonusPoints > 0 {
		bonus = fmt.Sprintf(" + BINGO! +%d", r.BonusPoints)
	}
	return fmt.Sprintf("%s %s %s%s points", glyph, r.Word, signed(r.PointsScored), bonus)
}

// RainText is the short summary shown when a word lands, e.g. "STARING +9 (+50) +5s".
func RainText(r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %+d", r.Word, r.PointsScored)
	if r.BonusPoints > 0 {
		fmt.Fprintf(&b, " (+%d)", r.BonusPoints)
	}
	if r.TimeDelta != 0 {
		fmt.Fprintf(&b, " %+ds", r.TimeDelta)
	}
	return b.String()
}

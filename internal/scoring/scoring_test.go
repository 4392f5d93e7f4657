package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitryfil/da-word-rain/internal/rack"
	"github.com/dmitryfil/da-word-rain/internal/tiles"
)

type wordSet map[string]bool

func (w wordSet) Has(word string) bool { return w[strings.ToUpper(word)] }

func spend(word string, points ...int) []rack.Tile {
	out := make([]rack.Tile, len(word))
	for i := range out {
		out[i] = rack.Tile{ID: string(rune('a' + i)), Letter: tiles.Letter(word[i]), Points: points[i], Mult: 1}
	}
	return out
}

func TestTilePoints(t *testing.T) {
	assert.Equal(t, 0, TilePoints(nil))
	assert.Equal(t, 0, TilePoints([]rack.Tile{}))

	ts := []rack.Tile{
		{ID: "1", Points: 4, Mult: 3},
		{ID: "2", Points: 1, Mult: 2},
		{ID: "3", Points: 10},
	}
	assert.Equal(t, 24, TilePoints(ts)) // unset multiplier counts as 1

	reversed := []rack.Tile{ts[2], ts[1], ts[0]}
	assert.Equal(t, TilePoints(ts), TilePoints(reversed))
}

func TestBingoBonusFor(t *testing.T) {
	for n := 0; n <= 20; n++ {
		want := 0
		if n == 7 {
			want = 50
		}
		assert.Equal(t, want, BingoBonusFor(n), "length %d", n)
	}
}

func TestTimeBonus(t *testing.T) {
	ts := []rack.Tile{
		{ID: "1", Points: 1, Green: true},
		{ID: "2", Points: 1},
		{ID: "3", Points: 1, Green: true},
	}
	assert.Equal(t, 10, TimeBonus(ts, true))
	assert.Equal(t, -10, TimeBonus(ts, false))
	assert.Equal(t, 0, TimeBonus(ts[1:2], true))
	assert.Equal(t, 0, TimeBonus(ts[1:2], false))
}

func TestEvaluateValidWord(t *testing.T) {
	s := New(wordSet{"HOUSE": true})
	res := s.Evaluate("house", spend("HOUSE", 4, 1, 1, 1, 1))

	assert.Equal(t, "HOUSE", res.Word)
	assert.True(t, res.IsValid)
	assert.Equal(t, 8, res.PointsScored)
	assert.Equal(t, 0, res.BonusPoints)
	assert.Equal(t, 0, res.TimeDelta)
	assert.Len(t, res.UsedTiles, 5)
}

func TestEvaluateInvalidWordCostsPoints(t *testing.T) {
	s := New(wordSet{})
	res := s.Evaluate("JKZ", spend("JKZ", 8, 4, 10))

	assert.False(t, res.IsValid)
	assert.Equal(t, -22, res.PointsScored)
	assert.Equal(t, 0, res.BonusPoints)
	assert.Equal(t, -22, res.Total())
}

func TestEvaluateBingo(t *testing.T) {
	s := New(wordSet{"RETAINS": true})
	res := s.Evaluate("RETAINS", spend("RETAINS", 1, 1, 1, 1, 1, 1, 1))

	assert.Equal(t, 7, res.PointsScored)
	assert.Equal(t, 50, res.BonusPoints)
	assert.Equal(t, 57, res.Total())

	// An invalid seven-letter word earns no bonus.
	res = New(wordSet{}).Evaluate("RETAINX", spend("RETAINX", 1, 1, 1, 1, 1, 1, 8))
	assert.Equal(t, -14, res.PointsScored)
	assert.Equal(t, 0, res.BonusPoints)
}

func TestEvaluateGreenTiles(t *testing.T) {
	ts := spend("TOE", 1, 1, 1)
	ts[0].Green = true
	ts[2].Green = true

	valid := New(wordSet{"TOE": true}).Evaluate("TOE", ts)
	assert.Equal(t, 10, valid.TimeDelta)

	invalid := New(wordSet{}).Evaluate("TOE", ts)
	assert.Equal(t, -10, invalid.TimeDelta)
}

func TestEvaluateCopiesTiles(t *testing.T) {
	ts := spend("AT", 1, 1)
	res := New(wordSet{"AT": true}).Evaluate("AT", ts)
	ts[0].Points = 99
	assert.Equal(t, 1, res.UsedTiles[0].Points)
	assert.Equal(t, "a", res.UsedTiles[0].ID)
	assert.Equal(t, "b", res.UsedTiles[1].ID)
}

func TestFormatScoreChange(t *testing.T) {
	assert.Equal(t, "✅ HOUSE +8 points",
		FormatScoreChange(Result{Word: "HOUSE", IsValid: true, PointsScored: 8}))
	assert.Equal(t, "❌ JKZ −22 points",
		FormatScoreChange(Result{Word: "JKZ", PointsScored: -22}))
	assert.Equal(t, "✅ RETAINS +7 + BINGO! +50 points",
		FormatScoreChange(Result{Word: "RETAINS", IsValid: true, PointsScored: 7, BonusPoints: 50}))
}

func TestRainText(t *testing.T) {
	assert.Equal(t, "RETAINS +7 (+50) +5s",
		RainText(Result{Word: "RETAINS", IsValid: true, PointsScored: 7, BonusPoints: 50, TimeDelta: 5}))
	assert.Equal(t, "JKZ -22 -10s",
		RainText(Result{Word: "JKZ", PointsScored: -22, TimeDelta: -10}))
}

package tiles

import (
	"testing"

	"github.com/matryer/is"

	"github.com/dmitryfil/da-word-rain/internal/config"
)

// scripted replays fixed draws so spawn decisions can be asserted exactly.
type scripted struct {
	floats []float64
	ints   []int
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scripted) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

func (s *scripted) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(i)
	}
	return len(p), nil
}

func onScreen(letters string) []*Tile {
	out := make([]*Tile, 0, len(letters))
	for i := 0; i < len(letters); i++ {
		out = append(out, &Tile{ID: letters[i : i+1], Letter: Letter(letters[i]), Mult: 1})
	}
	return out
}

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestCanSpawn(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))

	is.True(m.CanSpawn(nil))
	is.True(!m.CanSpawn(onScreen("ABCDEFG"))) // MaxOnScreen reached

	cfg := config.Default()
	cfg.MaxOnScreen = 40
	wide := NewManager(cfg, NewSeededSource(nil))
	is.True(wide.CanSpawn(onScreen("ABCDEFGHIJKLMNOPQRSTUVWXY")))
	is.True(!wide.CanSpawn(onScreen(alphabet))) // every letter already falling
}

func TestCreateTileRespectsCanSpawn(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))
	is.Equal(m.CreateTile(800, 600, onScreen("ABCDEFG")), nil)
}

func TestCreateTileShape(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource([]byte("shape")))

	var falling []*Tile
	for i := 0; i < 7; i++ {
		tile := m.CreateTile(800, 600, falling)
		is.True(tile != nil)
		is.True(tile.Letter.Valid())
		is.Equal(tile.Points, tile.Letter.Points())
		is.True(tile.Mult >= 1 && tile.Mult <= 3)
		is.True(tile.X >= 200 && tile.X < 600)
		is.Equal(tile.Y, SpawnY)
		is.True(tile.VY > 0)
		is.True(tile.VX >= -MaxDrift && tile.VX < MaxDrift)
		is.True(tile.ID != "")
		falling = append(falling, tile)
	}

	seen := map[Letter]bool{}
	ids := map[string]bool{}
	for _, tile := range falling {
		is.True(!seen[tile.Letter]) // one tile per letter on screen
		is.True(!ids[tile.ID])
		seen[tile.Letter] = true
		ids[tile.ID] = true
	}
	is.Equal(m.CreateTile(800, 600, falling), nil)
}

func TestCreateTileDeterministicForSeed(t *testing.T) {
	is := is.New(t)
	a := NewManager(config.Default(), NewSeededSource([]byte("replay")))
	b := NewManager(config.Default(), NewSeededSource([]byte("replay")))
	for i := 0; i < 5; i++ {
		ta := a.CreateTile(800, 600, nil)
		tb := b.CreateTile(800, 600, nil)
		is.Equal(*ta, *tb)
	}
}

func TestMultiplierPartition(t *testing.T) {
	cases := []struct {
		draw float64
		want int
	}{
		{0.00, 3},
		{0.039, 3},
		{0.04, 2},
		{0.139, 2},
		{0.141, 1},
		{0.99, 1},
	}
	for _, tc := range cases {
		src := &scripted{floats: []float64{0, tc.draw, 0.9, 0, 0, 0}}
		m := NewManager(config.Default(), src)
		tile := m.CreateTile(800, 600, nil)
		if tile.Mult != tc.want {
			t.Errorf("draw %v: mult = %d, want %d", tc.draw, tile.Mult, tc.want)
		}
	}
}

func TestGreenDraw(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), &scripted{floats: []float64{0, 0.5, 0.01}})
	is.True(m.CreateTile(800, 600, nil).Green)

	m = NewManager(config.Default(), &scripted{floats: []float64{0, 0.5, 0.05}})
	is.True(!m.CreateTile(800, 600, nil).Green)
}

func TestSpeedAndPositionScaling(t *testing.T) {
	is := is.New(t)

	// letter, mult (single), green (no), speed mid, x mid, vx mid
	m := NewManager(config.Default(), &scripted{floats: []float64{0, 0.5, 0.9, 0.5, 0.5, 0.5}})
	tile := m.CreateTile(800, 1200, nil)
	is.Equal(tile.Mult, 1)
	is.Equal(tile.VY, 500.0) // 250 px/s at 600px, doubled for a 1200px canvas
	is.Equal(tile.X, 400.0)
	is.Equal(tile.VX, 0.0)

	// triple falls 1.6x faster
	m = NewManager(config.Default(), &scripted{floats: []float64{0, 0, 0.9, 0, 0, 0}})
	tile = m.CreateTile(800, 600, nil)
	is.Equal(tile.Mult, 3)
	is.Equal(tile.VY, 160*1.6)
	is.Equal(tile.X, 200.0)
	is.Equal(tile.VX, -MaxDrift)
}

func TestWeightedLetterWalk(t *testing.T) {
	is := is.New(t)
	cfg := config.Default()
	cfg.MaxOnScreen = 40

	// Only A (weight 9) and B (weight 2) are absent; total 11.
	busy := onScreen("CDEFGHIJKLMNOPQRSTUVWXYZ")

	m := NewManager(cfg, &scripted{floats: []float64{0.8}})
	is.Equal(m.CreateTile(800, 600, busy).Letter, Letter('A')) // r = 8.8

	m = NewManager(cfg, &scripted{floats: []float64{0.9}})
	is.Equal(m.CreateTile(800, 600, busy).Letter, Letter('B')) // r = 9.9

	// A single absent letter is always chosen.
	m = NewManager(cfg, NewSeededSource([]byte("q")))
	is.Equal(m.CreateTile(800, 600, onScreen("ABCDEFGHIJKLMNOPRSTUVWXYZ")).Letter, Letter('Q'))
}

func TestDecayedLettersSpawnLess(t *testing.T) {
	is := is.New(t)
	cfg := config.Default()
	cfg.MaxOnScreen = 40
	busy := onScreen("CDEFGHIJKLMNOPQRSTUVWXYZ")

	m := NewManager(cfg, &scripted{floats: []float64{0.8}})
	for i := 0; i < 20; i++ {
		m.ReduceWeightsForBingo("A") // vowel, untouched
	}
	is.Equal(m.Weight('A'), 1.0)

	// B decays to 0.97^20 ≈ 0.54, total ≈ 10.09, r = 0.85*total ≈ 8.58 < 9 → A.
	for i := 0; i < 20; i++ {
		m.ReduceWeightsForBingo("B")
	}
	m.src = &scripted{floats: []float64{0.85}}
	is.Equal(m.CreateTile(800, 600, busy).Letter, Letter('A'))
}

func TestUpdateAndOffScreen(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))
	tile := &Tile{X: 10, Y: 0, VX: 20, VY: 100}

	m.UpdateTile(tile, 0.5)
	is.Equal(tile.X, 20.0)
	is.Equal(tile.Y, 50.0)

	tile.Y = 640
	is.True(!m.IsOffScreen(tile, 600))
	tile.Y = 640.5
	is.True(m.IsOffScreen(tile, 600))
}

func TestReduceWeightsForBingo(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))

	m.ReduceWeightsForBingo("HELLO")
	is.Equal(m.Weight('H'), 0.97)
	is.Equal(m.Weight('L'), 0.97) // twice in the word, decayed once
	is.Equal(m.Weight('E'), 1.0)
	is.Equal(m.Weight('O'), 1.0)
	is.Equal(m.Weight('Z'), 1.0)
}

func TestReduceWeightsFloor(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))
	for i := 0; i < 500; i++ {
		m.ReduceWeightsForBingo("ZZ")
	}
	is.Equal(m.Weight('Z'), minWeight)
}

func TestResetDynamicWeightsIdempotent(t *testing.T) {
	is := is.New(t)
	m := NewManager(config.Default(), NewSeededSource(nil))
	m.ReduceWeightsForBingo("STRING")

	m.ResetDynamicWeights()
	once := m.Weights()
	m.ResetDynamicWeights()
	is.Equal(m.Weights(), once)
	for _, w := range once {
		is.Equal(w, 1.0)
	}
}

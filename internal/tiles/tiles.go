// Package tiles spawns and moves the falling letter tiles.
//
// The Manager picks letters by weighted sampling over letters that are not
// already on screen, so at most one tile per letter is ever falling. Letters
// the player has shown mastery of (used in a bingo) have their spawn weight
// decayed for the rest of the match.
package tiles

import (
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dmitryfil/da-word-rain/internal/config"
)

const (
	// SpawnY is where new tiles start, just above the visible area.
	SpawnY = -30.0
	// OffScreenMargin is how far below the canvas a tile may fall before it is dropped.
	OffScreenMargin = 40.0
	// ReferenceHeight is the canvas height the configured speeds are tuned for.
	ReferenceHeight = 600.0
	// MaxDrift bounds the horizontal velocity, in px/s.
	MaxDrift = 20.0

	bingoDecay = 0.97
	minWeight  = 0.01
)

// Tile is a falling letter.
type Tile struct {
	ID     string  `json:"id"`
	Letter Letter  `json:"letter"`
	Points int     `json:"points"`
	Mult   int     `json:"mult"`
	Green  bool    `json:"green"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
}

// Manager owns the per-letter adaptive weights for one match.
type Manager struct {
	cfg     *config.Config
	src     Source
	weights [NumLetters]float64
}

// NewManager returns a Manager with all dynamic weights at 1.
func NewManager(cfg *config.Config, src Source) *Manager {
	m := &Manager{cfg: cfg, src: src}
	m.ResetDynamicWeights()
	return m
}

// ResetDynamicWeights restores every letter's dynamic weight to 1.
func (m *Manager) ResetDynamicWeights() {
	for i := range m.weights {
		m.weights[i] = 1
	}
}

// Weight returns the current dynamic weight of l.
func (m *Manager) Weight(l Letter) float64 { return m.weights[l.Index()] }

// Weights returns a copy of all dynamic weights, indexed A..Z.
func (m *Manager) Weights() [NumLetters]float64 { return m.weights }

// available lists the letters not currently on screen, in alphabet order.
func available(onScreen []*Tile) []Letter {
	present := lo.SliceToMap(onScreen, func(t *Tile) (Letter, struct{}) {
		return t.Letter, struct{}{}
	})
	out := make([]Letter, 0, NumLetters)
	for _, info := range Letters {
		if _, ok := present[info.Letter]; !ok {
			out = append(out, info.Letter)
		}
	}
	return out
}

// CanSpawn reports whether another tile may enter the screen: there is room
// under MaxOnScreen and at least one letter is not already falling.
func (m *Manager) CanSpawn(onScreen []*Tile) bool {
	return len(onScreen) < m.cfg.MaxOnScreen && len(available(onScreen)) > 0
}

// pickLetter samples an absent letter with weight base count × dynamic weight.
func (m *Manager) pickLetter(options []Letter) Letter {
	weights := lo.Map(options, func(l Letter, _ int) float64 {
		return float64(l.Info().Count) * m.weights[l.Index()]
	})
	total := lo.Sum(weights)
	if total <= 0 {
		return options[m.src.Intn(len(options))]
	}

	r := m.src.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return options[i]
		}
	}
	return options[len(options)-1]
}

// pickMult partitions one draw: [0,tpl) triple, [tpl,tpl+dbl) double, else single.
func (m *Manager) pickMult() int {
	r := m.src.Float64()
	p := m.cfg.MultiplierProb
	switch {
	case r < p.Tpl:
		return 3
	case r < p.Tpl+p.Dbl:
		return 2
	}
	return 1
}

func (m *Manager) newID() string {
	id, err := uuid.NewRandomFromReader(m.src)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CreateTile spawns a tile for a width×height canvas, or returns nil when
// CanSpawn is false.
func (m *Manager) CreateTile(width, height float64, onScreen []*Tile) *Tile {
	if !m.CanSpawn(onScreen) {
		return nil
	}
	letter := m.pickLetter(available(onScreen))
	mult := m.pickMult()
	green := m.src.Float64() < m.cfg.GreenProb

	speed := between(m.src, m.cfg.SpeedMin, m.cfg.SpeedMax) * (height / ReferenceHeight)
	speed *= m.cfg.SpeedScale(mult)

	x := between(m.src, width*0.25, width*0.75)
	vx := between(m.src, -MaxDrift, MaxDrift)

	return &Tile{
		ID:     m.newID(),
		Letter: letter,
		Points: letter.Points(),
		Mult:   mult,
		Green:  green,
		X:      x,
		Y:      SpawnY,
		VX:     vx,
		VY:     speed,
	}
}

// UpdateTile advances t by dt seconds at constant velocity.
func (m *Manager) UpdateTile(t *Tile, dt float64) {
	t.X += t.VX * dt
	t.Y += t.VY * dt
}

// IsOffScreen reports whether t has fallen past the bottom of a canvas of the given height.
func (m *Manager) IsOffScreen(t *Tile, height float64) bool {
	return t.Y > height+OffScreenMargin
}

// ReduceWeightsForBingo decays the spawn weight of each distinct consonant in
// word by 3%, floored at 0.01. Non-letters are ignored.
func (m *Manager) ReduceWeightsForBingo(word string) {
	seen := make(map[Letter]bool, len(word))
	for i := 0; i < len(word); i++ {
		l := Letter(word[i])
		if !l.Valid() || l.IsVowel() || seen[l] {
			continue
		}
		seen[l] = true
		w := m.weights[l.Index()] * bingoDecay
		if w < minWeight {
			w = minWeight
		}
		m.weights[l.Index()] = w
	}
}

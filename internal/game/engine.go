// internal/game/engine.go
//
// Core match coordinator for a single word-rain session.
// Responsibilities:
//   - Advance simulation time: countdown, periodic time penalty, game over.
//   - Drive tile spawning and movement through tiles.Manager.
//   - Move collected tiles into the rack.
//   - Validate and apply word submissions through scoring.Scorer.
//
// Notes:
//   - A Session is not safe for concurrent use; Runner serializes access.
//   - Time only moves through Step, so tests drive it with explicit dt values.
//   - Readiness is gated on a non-empty dictionary; see Step.
package game

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dmitryfil/da-word-rain/internal/config"
	"github.com/dmitryfil/da-word-rain/internal/rack"
	"github.com/dmitryfil/da-word-rain/internal/scoring"
	"github.com/dmitryfil/da-word-rain/internal/tiles"
)

const (
	// MaxStep is the largest dt a single Step applies, in seconds.
	MaxStep = 0.05
	// PenaltyEvery is the interval, in whole seconds, of the one-point time penalty.
	PenaltyEvery = 5
	// MinWordLen is the shortest submittable word.
	MinWordLen = 2
	// HitRadius scales TileSize into the pointer hit radius.
	HitRadius = 0.6

	DefaultWidth  = 480
	DefaultHeight = 600

	maxLogLines = 100
)

// Session is one match.
type Session struct {
	ID string

	cfg    *config.Config
	lex    Lexicon
	tm     *tiles.Manager
	rack   *rack.Rack
	scorer *scoring.Scorer
	logger zerolog.Logger

	state    State
	width    float64
	height   float64
	spawnAcc float64 // ms since the last spawn attempt
	lastSec  int     // last whole second the penalty check ran for
	lines    []string
	lastWord *LastWord
}

// New constructs a session that is not yet ready. It becomes ready, and starts
// running, on the first Step after lex holds at least one word.
// An empty id is replaced by a random UUID.
func New(id string, cfg *config.Config, lex Lexicon, src tiles.Source) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:      id,
		cfg:     cfg,
		lex:     lex,
		tm:      tiles.NewManager(cfg, src),
		rack:    rack.New(cfg.RackMax, tiles.NewSource()),
		scorer:  scoring.New(lex),
		logger:  log.With().Str("session", id).Logger(),
		state:   State{Score: cfg.StartScore},
		width:   DefaultWidth,
		height:  DefaultHeight,
		lastSec: -1,
	}
}

// State returns a shallow copy of the match state.
func (s *Session) State() State {
	st := s.state
	st.Tiles = slices.Clone(s.state.Tiles)
	return st
}

// Rack exposes the rack for read-only inspection.
func (s *Session) Rack() *rack.Rack { return s.rack }

// Log returns the human-readable event log, oldest first.
func (s *Session) Log() []string { return slices.Clone(s.lines) }

func (s *Session) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	s.lines = append(s.lines, line)
	if len(s.lines) > maxLogLines {
		s.lines = s.lines[len(s.lines)-maxLogLines:]
	}
}

// Start marks the session ready and running. It fails with ErrNotReady while
// the dictionary is empty.
func (s *Session) Start() error {
	if s.lex.Size() == 0 {
		return ErrNotReady
	}
	if !s.state.Ready {
		s.state.Ready = true
		s.logf("📚 Loaded dictionary with %d words.", s.lex.Size())
	}
	s.state.Running = true
	s.lastSec = -1
	s.logger.Info().Int("words", s.lex.Size()).Msg("session started")
	return nil
}

// Step advances the match by dt seconds (clamped to [0, MaxStep]).
func (s *Session) Step(dt float64) {
	if !s.state.Ready {
		if s.lex.Size() == 0 {
			return
		}
		_ = s.Start()
	}
	if !s.state.Running {
		return
	}
	dt = math.Max(0, math.Min(MaxStep, dt))

	s.advanceClock(dt)
	s.spawn(dt)
	s.moveTiles(dt)

	if s.state.Elapsed >= s.cfg.MaxTime {
		s.gameOver()
	}
}

// advanceClock moves elapsed forward and charges one point each time a new
// whole second is a non-zero multiple of PenaltyEvery.
func (s *Session) advanceClock(dt float64) {
	s.state.Elapsed = math.Min(s.cfg.MaxTime, s.state.Elapsed+dt)
	sec := int(math.Floor(s.state.Elapsed))
	if sec > s.lastSec {
		if sec != 0 && sec%PenaltyEvery == 0 {
			s.state.Score--
		}
		s.lastSec = sec
	}
}

func (s *Session) spawn(dt float64) {
	s.spawnAcc += dt * 1000
	if s.spawnAcc <= s.cfg.SpawnEvery {
		return
	}
	s.spawnAcc = 0
	if t := s.tm.CreateTile(s.width, s.height, s.state.Tiles); t != nil {
		s.state.Tiles = append(s.state.Tiles, t)
	}
}

func (s *Session) moveTiles(dt float64) {
	for _, t := range s.state.Tiles {
		s.tm.UpdateTile(t, dt)
	}
	s.state.Tiles = slices.DeleteFunc(s.state.Tiles, func(t *tiles.Tile) bool {
		return s.tm.IsOffScreen(t, s.height)
	})
}

func (s *Session) gameOver() {
	s.state.Running = false
	final := math.Round(s.state.Score)
	s.logf("⏱️ Time! Final score: %d. No further points can be scored.", int(final))
	s.logger.Info().Float64("score", final).Msg("game over")
}

func (s *Session) playable() error {
	switch {
	case !s.state.Ready:
		return ErrNotReady
	case !s.state.Running:
		return ErrNotRunning
	}
	return nil
}

// Collect moves the on-screen tile with the given id into the rack.
func (s *Session) Collect(id string) (rack.Tile, error) {
	if err := s.playable(); err != nil {
		return rack.Tile{}, err
	}
	i := slices.IndexFunc(s.state.Tiles, func(t *tiles.Tile) bool { return t.ID == id })
	if i < 0 {
		return rack.Tile{}, ErrTileNotFound
	}
	return s.collect(i)
}

// CollectLetter collects the lowest on-screen tile showing letter.
func (s *Session) CollectLetter(letter tiles.Letter) (rack.Tile, error) {
	if err := s.playable(); err != nil {
		return rack.Tile{}, err
	}
	best, bestY := -1, -1.0
	for i, t := range s.state.Tiles {
		if t.Letter == letter && t.Y > bestY {
			best, bestY = i, t.Y
		}
	}
	if best < 0 {
		return rack.Tile{}, ErrTileNotFound
	}
	return s.collect(best)
}

// CollectAt collects the tile nearest (x, y), if any lies strictly within
// HitRadius × TileSize.
func (s *Session) CollectAt(x, y float64) (rack.Tile, error) {
	if err := s.playable(); err != nil {
		return rack.Tile{}, err
	}
	radius := s.cfg.TileSize * HitRadius
	best, bestDist := -1, math.Inf(1)
	for i, t := range s.state.Tiles {
		d := math.Hypot(t.X-x, t.Y-y)
		if d < radius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return rack.Tile{}, ErrTileNotFound
	}
	return s.collect(best)
}

// collect takes tile i off the screen and tries to rack it. A tile collected
// into a full rack is lost.
func (s *Session) collect(i int) (rack.Tile, error) {
	t := s.state.Tiles[i]
	s.state.Tiles = slices.Delete(s.state.Tiles, i, i+1)
	if err := s.rack.AddTile(t); err != nil {
		s.logf("Rack full (%d).", s.rack.Capacity())
		return rack.Tile{}, err
	}
	return rack.FromTile(t), nil
}

// CanCompose reports whether a word may be submitted right now.
func (s *Session) CanCompose() bool {
	return s.state.Running && s.rack.IsFull()
}

// SanitizeInput reduces raw compose input to the letters the rack can supply:
// upper-cased, A–Z only, each letter at most as often as the rack holds it.
func (s *Session) SanitizeInput(raw string) string {
	have := s.rack.LetterCounts()
	used := make(map[tiles.Letter]int, len(raw))
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r < 'A' || r > 'Z' {
			continue
		}
		l := tiles.Letter(r)
		if used[l] < have[l] {
			used[l]++
			b.WriteByte(byte(l))
		}
	}
	return b.String()
}

// Projected is the tile score word would earn from the current rack, before
// validation and bonus. Words shorter than MinWordLen project 0.
func (s *Session) Projected(word string) int {
	if len(word) < MinWordLen {
		return 0
	}
	return scoring.TilePoints(s.rack.SelectTilesForWord(word))
}

// Submit validates word against the rack and dictionary and applies the
// result. Rejections (ErrWordRejected, ErrNotRunning, ErrRackNotFull) leave
// the state untouched apart from the event log.
func (s *Session) Submit(word string) (scoring.Result, error) {
	if !s.state.Ready {
		return scoring.Result{}, ErrNotReady
	}
	word = strings.TrimSpace(word)
	if len(word) < MinWordLen {
		s.logf("Use only letters from your rack (min %d letters).", MinWordLen)
		return scoring.Result{}, fmt.Errorf("%w: %q is too short", ErrWordRejected, word)
	}
	if !s.state.Running {
		s.logf("⏹️ Game over: submissions disabled.")
		return scoring.Result{}, ErrNotRunning
	}
	if !s.rack.IsFull() {
		return scoring.Result{}, ErrRackNotFull
	}
	used := s.rack.SelectTilesForWord(word)
	if len(used) != len(word) {
		s.logf("Use only letters from your rack (min %d letters).", MinWordLen)
		return scoring.Result{}, fmt.Errorf("%w: %q", ErrWordRejected, word)
	}

	res := s.scorer.Evaluate(word, used)
	s.apply(res)
	return res, nil
}

func (s *Session) apply(res scoring.Result) {
	s.state.Score += float64(res.Total())
	if res.TimeDelta != 0 {
		s.state.Elapsed = math.Max(0, math.Min(s.cfg.MaxTime, s.state.Elapsed-float64(res.TimeDelta)))
	}
	if res.BonusPoints > 0 {
		s.tm.ReduceWeightsForBingo(res.Word)
	}
	s.rack.RemoveTiles(lo.Map(res.UsedTiles, func(t rack.Tile, _ int) string { return t.ID }))

	s.logf("%s", scoring.FormatScoreChange(res))
	s.lastWord = &LastWord{Result: res, Rain: scoring.RainText(res)}
	s.logger.Debug().
		Str("word", res.Word).
		Bool("valid", res.IsValid).
		Int("points", res.Total()).
		Int("timeDelta", res.TimeDelta).
		Float64("score", s.state.Score).
		Msg("word submitted")
}

// Alphabetize sorts the rack by letter.
func (s *Session) Alphabetize() { s.rack.Alphabetize() }

// Shuffle randomly permutes the rack.
func (s *Session) Shuffle() { s.rack.Shuffle() }

// Reset starts a fresh match in place: score, clock, tiles, rack, weights and
// log are all restored. The session stays not-ready while the dictionary is empty.
func (s *Session) Reset() {
	s.state.Elapsed = 0
	s.state.Score = s.cfg.StartScore
	s.state.Tiles = nil
	s.rack.Clear()
	s.tm.ResetDynamicWeights()
	s.spawnAcc = 0
	s.lastSec = -1
	s.lines = nil
	s.lastWord = nil
	if s.state.Ready {
		s.state.Running = true
	}
	s.logger.Info().Msg("session reset")
}

// Resize updates the viewport tiles spawn into and fall through.
func (s *Session) Resize(width, height float64) error {
	if width <= 0 || height <= 0 {
		return ErrBadViewport
	}
	s.width, s.height = width, height
	return nil
}

// Snapshot copies the client-visible state.
func (s *Session) Snapshot() Snapshot {
	remaining := int(math.Floor(s.cfg.MaxTime - s.state.Elapsed))
	var lw *LastWord
	if s.lastWord != nil {
		cp := *s.lastWord
		lw = &cp
	}
	return Snapshot{
		ID:         s.ID,
		Running:    s.state.Running,
		Ready:      s.state.Ready,
		Elapsed:    s.state.Elapsed,
		Remaining:  max(0, remaining),
		Score:      s.state.Score,
		Width:      s.width,
		Height:     s.height,
		Tiles:      lo.Map(s.state.Tiles, func(t *tiles.Tile, _ int) tiles.Tile { return *t }),
		Rack:       s.rack.Tiles(),
		RackMax:    s.rack.Capacity(),
		CanCompose: s.CanCompose(),
		LastWord:   lw,
		Log:        s.Log(),
	}
}

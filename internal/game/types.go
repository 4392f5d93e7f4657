// internal/game/types.go
//
// Core type definitions for the word-rain match coordinator.
// Defines:
//   - Lexicon: the dictionary view a session needs.
//   - State: authoritative per-match state owned by a Session.
//   - Snapshot: the read-only view handed to clients after every tick or command.
//   - Sentinel errors returned by Session operations.

package game

import (
	"errors"

	"github.com/dmitryfil/da-word-rain/internal/rack"
	"github.com/dmitryfil/da-word-rain/internal/scoring"
	"github.com/dmitryfil/da-word-rain/internal/tiles"
)

var (
	// ErrWordRejected is a soft rejection: the word was too short or not
	// composable from the rack. No state is changed.
	ErrWordRejected = errors.New("use only letters from your rack (min 2 letters)")
	// ErrNotRunning is returned for actions attempted after time ran out.
	ErrNotRunning = errors.New("game over: submissions disabled")
	// ErrNotReady is returned until a non-empty dictionary is available.
	ErrNotReady = errors.New("dictionary not loaded")
	// ErrRackNotFull is returned when composing before the rack is full.
	ErrRackNotFull = errors.New("rack must be full to compose")
	// ErrTileNotFound is returned when a collect does not hit an on-screen tile.
	ErrTileNotFound = errors.New("no tile there")
	// ErrBadViewport is returned for non-positive canvas dimensions.
	ErrBadViewport = errors.New("viewport must be positive")
)

// Lexicon is the dictionary a session validates words against.
// *words.Dictionary satisfies it.
type Lexicon interface {
	scoring.Lexicon
	Size() int
}

// State is the authoritative state of one match.
type State struct {
	Running bool
	Ready   bool
	Elapsed float64 // seconds, 0 ≤ Elapsed ≤ MaxTime
	Score   float64
	Tiles   []*tiles.Tile // on screen, at most one per letter
}

// LastWord is the most recent submission with its display summary.
type LastWord struct {
	scoring.Result
	Rain string `json:"rain"`
}

// Snapshot is a copy of everything a client renders.
type Snapshot struct {
	ID         string       `json:"id"`
	Running    bool         `json:"running"`
	Ready      bool         `json:"ready"`
	Elapsed    float64      `json:"elapsed"`
	Remaining  int          `json:"remaining"` // whole seconds left
	Score      float64      `json:"score"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Tiles      []tiles.Tile `json:"tiles"`
	Rack       []rack.Tile  `json:"rack"`
	RackMax    int          `json:"rackMax"`
	CanCompose bool         `json:"canCompose"`
	LastWord   *LastWord    `json:"lastWord,omitempty"`
	Log        []string     `json:"log"`
}

// internal/httpserver/routes_game.go
//
// HTTP routes for a word-rain session.
//   - POST /game/new                    → {width, height, daily}; returns {gameId, token}
//   - GET  /game/{id}                   → current snapshot
//   - POST /game/{id}/collect           → {tileId} | {letter} | {x, y}
//   - POST /game/{id}/submit            → {word}
//   - POST /game/{id}/projected         → {word}, sanitized against the rack
//   - POST /game/{id}/rack/alphabetize
//   - POST /game/{id}/rack/shuffle
//   - POST /game/{id}/reset
//   - POST /game/{id}/resize            → {width, height}
//   - DELETE /game/{id}
//   - POST /dictionary/reload           → re-read the configured word source
//
// Every mutating call answers with the post-command snapshot, taken in the
// same runner command so it reflects exactly that change.

package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dmitryfil/da-word-rain/internal/config"
	"github.com/dmitryfil/da-word-rain/internal/daily"
	"github.com/dmitryfil/da-word-rain/internal/game"
	"github.com/dmitryfil/da-word-rain/internal/rack"
	"github.com/dmitryfil/da-word-rain/internal/scoring"
	"github.com/dmitryfil/da-word-rain/internal/tiles"
)

func (s *Server) mountGame(r chi.Router) {
	r.Get("/", s.handleSnapshot)
	r.Delete("/", s.handleDelete)
	r.Post("/collect", s.handleCollect)
	r.Post("/submit", s.handleSubmit)
	r.Post("/projected", s.handleProjected)
	r.Post("/rack/alphabetize", s.simple(func(g *game.Session) error { g.Alphabetize(); return nil }))
	r.Post("/rack/shuffle", s.simple(func(g *game.Session) error { g.Shuffle(); return nil }))
	r.Post("/reset", s.simple(func(g *game.Session) error { g.Reset(); return nil }))
	r.Post("/resize", s.handleResize)
}

type viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type newGameReq struct {
	viewport
	Daily bool `json:"daily"` // same tile stream for everyone today
}

type newGameRes struct {
	GameID    string         `json:"gameId"`
	Token     string         `json:"token"`
	ExpiresAt int64          `json:"expiresAt"`
	Daily     string         `json:"daily,omitempty"` // YYYY-MM-DD of the shared seed
	Config    *config.Config `json:"config"`
	Snapshot  game.Snapshot  `json:"snapshot"`
}

// handleNewGame creates a session, starts its runner, and returns a token bound to it.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	src, day := tiles.NewSource(), ""
	if req.Daily {
		now := time.Now()
		src, day = tiles.NewSeededSource(daily.Seed(now, s.opts.DailySalt)), daily.DateKey(now)
	}
	g := game.New("", s.opts.Config, s.dict, src)
	if req.Width != 0 || req.Height != 0 {
		if err := g.Resize(req.Width, req.Height); err != nil {
			writeErr(w, err)
			return
		}
	}
	if err := g.Start(); err != nil && !errors.Is(err, game.ErrNotReady) {
		writeErr(w, err)
		return
	}
	snap := g.Snapshot()

	run := game.NewRunner(g, s.opts.TickHz, 0)
	go run.Run(s.runCtx)
	if err := s.store.Save(r.Context(), run); err != nil {
		run.Stop()
		writeErr(w, err)
		return
	}

	tok, exp, err := s.signToken(g.ID)
	if err != nil {
		_ = s.store.Delete(r.Context(), g.ID)
		writeErr(w, fmt.Errorf("sign token: %w", err))
		return
	}
	log.Info().Str("session", g.ID).Bool("ready", snap.Ready).Str("daily", day).Msg("session created")
	writeJSON(w, http.StatusOK, newGameRes{
		GameID:    g.ID,
		Token:     tok,
		ExpiresAt: exp.Unix(),
		Daily:     day,
		Config:    s.opts.Config,
		Snapshot:  snap,
	})
}

// do runs fn on the request's session and then captures a snapshot in the same command.
func (s *Server) do(r *http.Request, fn func(*game.Session) error) (game.Snapshot, error) {
	var snap game.Snapshot
	err := runnerFrom(r).Do(r.Context(), func(g *game.Session) error {
		if err := fn(g); err != nil {
			return err
		}
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

// simple adapts a command with no body and no result beyond the snapshot.
func (s *Server) simple(fn func(*game.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.do(r, fn)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.simple(func(*game.Session) error { return nil })(w, r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type collectReq struct {
	TileID string        `json:"tileId"`
	Letter *tiles.Letter `json:"letter"`
	X      *float64      `json:"x"`
	Y      *float64      `json:"y"`
}

type collectRes struct {
	Tile     rack.Tile     `json:"tile"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// handleCollect moves one on-screen tile into the rack, picked by id, by
// letter (lowest tile), or by pointer position.
func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectReq
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}

	var pick func(*game.Session) (rack.Tile, error)
	switch {
	case req.TileID != "":
		pick = func(g *game.Session) (rack.Tile, error) { return g.Collect(req.TileID) }
	case req.Letter != nil:
		l := *req.Letter
		pick = func(g *game.Session) (rack.Tile, error) { return g.CollectLetter(l) }
	case req.X != nil && req.Y != nil:
		x, y := *req.X, *req.Y
		pick = func(g *game.Session) (rack.Tile, error) { return g.CollectAt(x, y) }
	default:
		writeErr(w, fmt.Errorf("%w: need tileId, letter, or x and y", errBadRequest))
		return
	}

	var res collectRes
	snap, err := s.do(r, func(g *game.Session) error {
		t, err := pick(g)
		if err != nil {
			return err
		}
		res.Tile = t
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	res.Snapshot = snap
	writeJSON(w, http.StatusOK, res)
}

type wordReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	Result   scoring.Result `json:"result"`
	Summary  string         `json:"summary"`
	Snapshot game.Snapshot  `json:"snapshot"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	var res submitRes
	snap, err := s.do(r, func(g *game.Session) error {
		out, err := g.Submit(req.Word)
		if err != nil {
			return err
		}
		res.Result = out
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	res.Summary = scoring.FormatScoreChange(res.Result)
	res.Snapshot = snap
	writeJSON(w, http.StatusOK, res)
}

type projectedRes struct {
	Word       string      `json:"word"` // sanitized input
	Projected  int         `json:"projected"`
	Tiles      []rack.Tile `json:"tiles"`
	CanCompose bool        `json:"canCompose"`
}

// handleProjected sanitizes in-progress compose input and previews its tile score.
func (s *Server) handleProjected(w http.ResponseWriter, r *http.Request) {
	var req wordReq
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	var res projectedRes
	err := runnerFrom(r).Do(r.Context(), func(g *game.Session) error {
		res.Word = g.SanitizeInput(req.Word)
		res.Projected = g.Projected(res.Word)
		res.Tiles = g.Rack().SelectTilesForWord(res.Word)
		res.CanCompose = g.CanCompose()
		return nil
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	if res.Tiles == nil {
		res.Tiles = []rack.Tile{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req viewport
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	s.simple(func(g *game.Session) error { return g.Resize(req.Width, req.Height) })(w, r)
}

// handleReload re-reads the configured dictionary source. Sessions share the
// dictionary, so every session sees the new words on its next lookup.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := s.dict.LoadSource(r.Context(), s.opts.DictSource)
	if err != nil {
		log.Warn().Err(err).Str("source", s.opts.DictSource.String()).Msg("dictionary reload failed")
		writeJSON(w, http.StatusBadGateway, errorRes{Error: "reload_failed", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": n, "source": s.opts.DictSource.String()})
}

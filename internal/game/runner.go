package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTickHz      = 60
	DefaultBroadcastHz = 20
	// MaxTickHz caps the tick rate so the ticker period stays positive.
	MaxTickHz = 1000
)

// ErrStopped is returned by Do once the runner's loop has exited.
var ErrStopped = errors.New("session stopped")

type command struct {
	fn    func(*Session) error
	reply chan error
}

// Runner owns a Session on a single goroutine. The session is stepped on a
// fixed-rate ticker and every other access goes through Do, so ticks and
// commands never interleave.
type Runner struct {
	s              *Session
	inbox          chan command
	tickHz         int
	broadcastEvery int

	subs    map[int]chan Snapshot
	nextSub int

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRunner wraps s. Non-positive rates fall back to the defaults and the
// tick rate is capped at MaxTickHz.
func NewRunner(s *Session, tickHz, broadcastHz int) *Runner {
	if tickHz <= 0 {
		tickHz = DefaultTickHz
	}
	tickHz = min(tickHz, MaxTickHz)
	if broadcastHz <= 0 {
		broadcastHz = DefaultBroadcastHz
	}
	every := tickHz / broadcastHz
	if every <= 0 {
		every = 1
	}
	return &Runner{
		s:              s,
		inbox:          make(chan command, 64),
		tickHz:         tickHz,
		broadcastEvery: every,
		subs:           make(map[int]chan Snapshot),
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// ID is the wrapped session's id.
func (r *Runner) ID() string { return r.s.ID }

// Run drives the session until ctx is cancelled or Stop is called.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.closeSubs()

	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	logger := log.With().Str("session", r.s.ID).Logger()
	logger.Debug().Int("tickHz", r.tickHz).Msg("runner started")
	defer logger.Debug().Msg("runner stopped")

	last := time.Now()
	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case cmd := <-r.inbox:
			cmd.reply <- cmd.fn(r.s)
			r.publish()
		case now := <-ticker.C:
			r.s.Step(now.Sub(last).Seconds())
			last = now
			tick++
			if tick%r.broadcastEvery == 0 {
				r.publish()
			}
		}
	}
}

// Stop ends the loop. It is safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Do runs fn on the session goroutine and returns its error.
func (r *Runner) Do(ctx context.Context, fn func(*Session) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.inbox <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the session's current snapshot.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, func(s *Session) error {
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

// Subscribe returns a channel that receives the current snapshot immediately
// and then one per broadcast or command. A slow reader only ever sees the
// latest snapshot. The channel is closed by cancel or when the runner stops.
func (r *Runner) Subscribe(ctx context.Context) (<-chan Snapshot, func(), error) {
	ch := make(chan Snapshot, 1)
	var id int
	err := r.Do(ctx, func(s *Session) error {
		id = r.nextSub
		r.nextSub++
		r.subs[id] = ch
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	cancel := func() {
		_ = r.Do(context.Background(), func(*Session) error {
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
			return nil
		})
	}
	return ch, cancel, nil
}

// publish runs on the loop goroutine.
func (r *Runner) publish() {
	if len(r.subs) == 0 {
		return
	}
	snap := r.s.Snapshot()
	for _, ch := range r.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (r *Runner) closeSubs() {
	for id, ch := range r.subs {
		close(ch)
		delete(r.subs, id)
	}
}

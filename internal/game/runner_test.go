package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

func startRunner(t *testing.T, s *Session) (*Runner, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(s, 200, 50)
	go r.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-r.Done()
	})
	return r, ctx
}

func TestRunnerTicksSession(t *testing.T) {
	is := is.New(t)
	r, ctx := startRunner(t, newSession(t, testWords))

	deadline := time.After(2 * time.Second)
	for {
		snap, err := r.Snapshot(ctx)
		is.NoErr(err)
		if snap.Ready && snap.Elapsed > 0 {
			is.True(snap.Running)
			return
		}
		select {
		case <-deadline:
			t.Fatalf("session never advanced: %+v", snap)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNewRunnerClampsTickRate(t *testing.T) {
	is := is.New(t)
	s := newSession(t, testWords)

	is.Equal(NewRunner(s, 2_000_000_000, 0).tickHz, MaxTickHz)
	is.Equal(NewRunner(s, 0, 0).tickHz, DefaultTickHz)

	fast := NewRunner(s, 2_000_000_000, 0)
	go fast.Run(context.Background())
	fast.Stop()
	<-fast.Done()
}

func TestRunnerDoReturnsCommandError(t *testing.T) {
	is := is.New(t)
	r, ctx := startRunner(t, newSession(t, lexicon{}))

	err := r.Do(ctx, func(s *Session) error { return s.Start() })
	is.True(errors.Is(err, ErrNotReady))

	err = r.Do(ctx, func(s *Session) error { return s.Resize(800, 600) })
	is.NoErr(err)
	snap, err := r.Snapshot(ctx)
	is.NoErr(err)
	is.Equal(snap.Width, 800.0)
	is.Equal(r.ID(), "test")
}

func TestRunnerSubscribe(t *testing.T) {
	is := is.New(t)
	r, ctx := startRunner(t, newSession(t, testWords))

	ch, cancel, err := r.Subscribe(ctx)
	is.NoErr(err)

	select {
	case snap, ok := <-ch:
		is.True(ok)
		is.Equal(snap.ID, "test")
	case <-time.After(time.Second):
		t.Fatal("no snapshot after subscribe")
	}

	cancel()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription not closed")
		}
	}
}

func TestRunnerStop(t *testing.T) {
	is := is.New(t)
	r := NewRunner(newSession(t, testWords), 0, 0)
	go r.Run(context.Background())

	ch, _, err := r.Subscribe(context.Background())
	is.NoErr(err)

	r.Stop()
	r.Stop()
	<-r.Done()

	err = r.Do(context.Background(), func(*Session) error { return nil })
	is.True(errors.Is(err, ErrStopped))

	for range ch {
	}
}

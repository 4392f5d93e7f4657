package tiles

import (
	"io"

	"lukechampine.com/frand"
)

// Source is the randomness seam for spawning and shuffling.
// *frand.RNG satisfies it; tests pass seeded streams or scripted fakes.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). It panics if n <= 0.
	Intn(n int) int
	io.Reader
}

// NewSource returns a fresh CSPRNG-backed source for one session.
// It is not safe for concurrent use; each session owns its own.
func NewSource() Source {
	return frand.New()
}

// NewSeededSource returns a deterministic source for replays and tests.
// Seeds shorter than 32 bytes are zero-padded, longer ones truncated.
func NewSeededSource(seed []byte) Source {
	var key [32]byte
	copy(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}

// between draws uniformly from [lo, hi).
func between(src Source, lo, hi float64) float64 {
	return src.Float64()*(hi-lo) + lo
}

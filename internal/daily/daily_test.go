package daily

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDateKeyIsUTC(t *testing.T) {
	is := is.New(t)
	loc := time.FixedZone("UTC+10", 10*60*60)
	is.Equal(DateKey(time.Date(2026, 3, 2, 5, 0, 0, 0, loc)), "2026-03-01")
}

func TestSeedStablePerDay(t *testing.T) {
	is := is.New(t)
	morning := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	next := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)

	is.Equal(len(Seed(morning, "salt")), 32)
	is.Equal(Seed(morning, "salt"), Seed(evening, "salt"))
	is.True(string(Seed(morning, "salt")) != string(Seed(next, "salt")))
	is.True(string(Seed(morning, "salt")) != string(Seed(morning, "pepper")))
}

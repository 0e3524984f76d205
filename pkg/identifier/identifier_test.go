package identifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(millis int64) Clock {
	return func() time.Time { return time.UnixMilli(millis) }
}

func TestDerive(t *testing.T) {
	g := NewGenerator(fixedClock(1700000000000))

	assert.Equal(t, "ann1700000000000", g.Derive("Ann"))
	assert.Equal(t, "ann1700000000000", g.Derive("  Ann  "))
	assert.Equal(t, "maryjane1700000000000", g.Derive("Mary Jane"))
	assert.Equal(t, "josé1700000000000", g.Derive("José"))
}

func TestDeriveChangesWithClock(t *testing.T) {
	first := NewGenerator(fixedClock(1700000000000)).Derive("Ann")
	second := NewGenerator(fixedClock(1700000000001)).Derive("Ann")
	assert.NotEqual(t, first, second)
}

func TestDeriveEmptyName(t *testing.T) {
	g := NewGenerator(fixedClock(1700000000000))
	assert.Equal(t, "1700000000000", g.Derive("   "))
}

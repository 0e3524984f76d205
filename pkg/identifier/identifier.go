// Package identifier derives the human-shareable patient identifier
// issued once at registration. The identifier is the lower-cased first
// name followed by a millisecond timestamp, e.g. "ann1717430400123".
// It is never regenerated after issue; uniqueness is backed by a
// constraint on the patients table.
package identifier

import (
	"strconv"
	"strings"
	"time"
)

// Clock abstracts time.Now so derivation is reproducible in tests.
type Clock func() time.Time

// Generator derives patient identifiers.
type Generator struct {
	clock Clock
}

func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{clock: clock}
}

// Derive builds an identifier from the first name and the current
// instant. Whitespace inside the name is collapsed away so the result
// stays a single shareable token.
func (g *Generator) Derive(firstName string) string {
	name := strings.ToLower(strings.TrimSpace(firstName))
	name = strings.Join(strings.Fields(name), "")
	return name + strconv.FormatInt(g.clock().UnixMilli(), 10)
}

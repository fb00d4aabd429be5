// internal/idgen/idgen.go

// Package idgen issues fixed-length decimal-digit identifiers for one
// entity class. Users and accounts each get their own Generator, so
// their namespaces stay independent.
package idgen

// Source is the randomness a Generator draws from. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Generator mints identifiers of a fixed digit length. Generation is
// pure: the caller must register the returned id before handing the
// generator out again.
type Generator struct {
	length int
	rng    Source
}

// New creates a Generator producing identifiers of the given length.
func New(length int, rng Source) *Generator {
	return &Generator{length: length, rng: rng}
}

// Next draws uniformly random digit strings until one is found for
// which taken reports false. There is no retry bound: at 6 or 10 digits
// the collision probability is negligible for realistic populations,
// and exhaustion of the space is not a handled condition.
func (g *Generator) Next(taken func(id string) bool) string {
	buf := make([]byte, g.length)
	for {
		for i := range buf {
			buf[i] = '0' + byte(g.rng.IntN(10))
		}
		id := string(buf)
		if !taken(id) {
			return id
		}
	}
}

// Length returns the digit length of identifiers this Generator mints.
func (g *Generator) Length() int {
	return g.length
}

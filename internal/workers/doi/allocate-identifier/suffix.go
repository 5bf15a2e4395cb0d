package allocateidentifier

import (
	"iter"
	"math/rand/v2"
	"strings"
)

// Alphabet holds the digits and the lowercase consonants except "l". Vowels
// are left out so suffixes never spell words, and "l" is easily read as "1".
const Alphabet = "0123456789bcdfghjkmnpqrstvwxyz"

// SuffixLength is the number of symbols in a generated suffix.
const SuffixLength = 8

// Source is the random source behind the generator. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// SuffixGenerator draws random suffixes. Every draw is independent, so the
// sequence cannot be replayed.
type SuffixGenerator struct {
	src Source
}

// NewSuffixGenerator returns a generator reading from src, or from the
// process-wide random source when src is nil.
func NewSuffixGenerator(src Source) *SuffixGenerator {
	if src == nil {
		src = globalSource{}
	}
	return &SuffixGenerator{src: src}
}

// Next returns a fresh suffix.
func (g *SuffixGenerator) Next() string {
	var b strings.Builder
	b.Grow(SuffixLength)
	for i := 0; i < SuffixLength; i++ {
		b.WriteByte(Alphabet[g.src.IntN(len(Alphabet))])
	}
	return b.String()
}

// All yields suffixes until the consumer stops.
func (g *SuffixGenerator) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(g.Next()) {
				return
			}
		}
	}
}

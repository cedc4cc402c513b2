// Package fingerprint turns team names into normalized character-frequency
// vectors so names spelled differently by two data sources can be compared.
package fingerprint

import (
	"math"
	"regexp"
	"slices"
	"strings"
)

// DefaultNoiseTokens are club suffixes and prefixes that carry no identity.
var DefaultNoiseTokens = []string{"fc", "cf", "afc", "sc", "ac", "fk", "cd"}

var parenthetical = regexp.MustCompile(`\(.+?\)`)

// Vector maps a consonant to its share of a unit-length frequency vector.
type Vector map[rune]float64

// Magnitude is the L2 norm of the vector; 1 for any non-empty fingerprint.
func (v Vector) Magnitude() float64 {
	var sum float64
	for _, c := range v {
		sum += c * c
	}
	return math.Sqrt(sum)
}

// Normalizer builds fingerprints with a fixed set of noise tokens.
type Normalizer struct {
	noise map[string]struct{}
}

// NewNormalizer creates a normalizer that drops the given whole-word tokens.
func NewNormalizer(noiseTokens []string) *Normalizer {
	noise := make(map[string]struct{}, len(noiseTokens))
	for _, tok := range noiseTokens {
		noise[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &Normalizer{noise: noise}
}

var defaultNormalizer = NewNormalizer(DefaultNoiseTokens)

// Fingerprint uses the default noise tokens.
func Fingerprint(name string) Vector {
	return defaultNormalizer.Fingerprint(name)
}

// Fingerprint folds case, drops parenthetical qualifiers and noise tokens,
// keeps only consonants a-z and returns their L2-normalized frequencies.
// A name with no consonants yields an empty vector.
func (n *Normalizer) Fingerprint(name string) Vector {
	name = parenthetical.ReplaceAllString(strings.ToLower(name), " ")

	counts := make(map[rune]int)
	for _, word := range strings.FieldsFunc(name, func(r rune) bool { return r < 'a' || r > 'z' }) {
		if _, skip := n.noise[word]; skip {
			continue
		}
		for _, r := range word {
			switch r {
			case 'a', 'e', 'i', 'o', 'u':
				continue
			}
			counts[r]++
		}
	}

	var sum float64
	for _, c := range counts {
		sum += float64(c * c)
	}
	norm := math.Sqrt(sum)

	v := make(Vector, len(counts))
	for r, c := range counts {
		v[r] = float64(c) / norm
	}
	return v
}

// Similarity is the cosine similarity of two fingerprints: the dot product
// over characters present in both. 0 when nothing overlaps.
func Similarity(a, b Vector) float64 {
	common := make([]rune, 0, len(a))
	for r := range a {
		if _, ok := b[r]; ok {
			common = append(common, r)
		}
	}
	// fixed summation order keeps the result symmetric to the last bit
	slices.Sort(common)

	var dot float64
	for _, r := range common {
		dot += a[r] * b[r]
	}
	return math.Max(0, math.Min(1, dot))
}

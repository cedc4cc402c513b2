package bettype

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// KeySchemeVersion identifies the hash and layout used by the key functions.
// Persisted keys are only comparable between equal versions.
const KeySchemeVersion = 1

const timeKeyLayout = "200601021504"

// StableHash is XXH64 over the UTF-8 bytes of s. It is seed-free and
// identical across processes and platforms.
func StableHash(s string) uint64 {
	return xxhash.Sum64String(s)
}

// TimeKey renders a start time as a fixed-width UTC yyyymmddHHMM string
func TimeKey(t time.Time) string {
	return t.UTC().Format(timeKeyLayout)
}

// TeamKey concatenates, per team, a 16-bit fingerprint of the name and
// its uppercase letters.
func TeamKey(teams [2]string) string {
	var b strings.Builder
	for _, team := range teams {
		fmt.Fprintf(&b, "%d%s", StableHash(team)&0xFFFF, abbreviation(team))
	}
	return b.String()
}

// MatchKey identifies an event by start time and team names
func MatchKey(start time.Time, teams [2]string) string {
	return TimeKey(start) + TeamKey(teams)
}

func groupKey(matchKey, typeKey string) string {
	return fmt.Sprintf("%d%s", StableHash(matchKey)&0xFFFF, typeKey)
}

func abbreviation(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package transcoder

import (
	"strings"
	"unicode/utf8"
)

// Default trailer markers used by the upstream.
const (
	StatsStartMarker = "<|stats|>"
	StatsEndMarker   = "<|/stats|>"
)

// Scan decides how much of buffer is safe to emit while looking for marker.
//
// If marker occurs in buffer, emittable is everything before the first
// occurrence, retained is empty and found is true; the marker and whatever
// follows it are dropped. Otherwise the last len(marker)-1 characters are
// retained, since they may be the start of a marker split across reads, and
// the rest is emittable.
//
// Lengths are counted in characters, and a multi-byte character is never
// split between emittable and retained.
func Scan(buffer, marker string) (emittable, retained string, found bool) {
	if marker == "" {
		return buffer, "", false
	}

	if idx := strings.Index(buffer, marker); idx >= 0 {
		return buffer[:idx], "", true
	}

	keep := utf8.RuneCountInString(marker) - 1
	cut := len(buffer)
	for i := 0; i < keep && cut > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(buffer[:cut])
		cut -= size
	}

	return buffer[:cut], buffer[cut:], false
}

// truncateAtMarker drops marker and everything after its first occurrence.
func truncateAtMarker(text, marker string) string {
	if marker == "" {
		return text
	}
	if idx := strings.Index(text, marker); idx >= 0 {
		return text[:idx]
	}
	return text
}

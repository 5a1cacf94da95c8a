package transcoder

import "regexp"

// Stripper removes marker-delimited trailer sections from complete text.
type Stripper struct {
	start string
	end   string
	re    *regexp.Regexp
}

// NewStripper builds a stripper for sections opened by start and closed by
// end. Matching is non-greedy, so each section ends at the first end marker
// after its start marker.
func NewStripper(start, end string) *Stripper {
	return &Stripper{
		start: start,
		end:   end,
		re:    regexp.MustCompile(regexp.QuoteMeta(start) + `[\s\S]*?` + regexp.QuoteMeta(end)),
	}
}

// DefaultStripper strips the upstream's stats trailer.
var DefaultStripper = NewStripper(StatsStartMarker, StatsEndMarker)

// Start returns the section's opening marker.
func (s *Stripper) Start() string {
	return s.start
}

// End returns the section's closing marker.
func (s *Stripper) End() string {
	return s.end
}

// Strip removes every complete section from text and leaves the rest
// untouched. It must only be applied to text that will not grow, since a
// section whose end marker has not arrived yet is left in place.
//
// Removal repeats until nothing matches, so the result is a fixed point and
// stripping it again is a no-op.
func (s *Stripper) Strip(text string) string {
	for {
		out := s.re.ReplaceAllLiteralString(text, "")
		if out == text {
			return out
		}
		text = out
	}
}

// StripStats removes every stats trailer from text.
func StripStats(text string) string {
	return DefaultStripper.Strip(text)
}

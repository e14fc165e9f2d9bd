package utils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify folds s into a lowercase ASCII identifier such as "apple-macbook-air-13".
// Accents are stripped; runs of other characters collapse to a single hyphen.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// IDSet hands out identifiers that are unique within one batch.
type IDSet struct {
	seen map[string]struct{}
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]struct{})}
}

// Assign returns base if it is unused, otherwise base with the first free
// numeric suffix ("widget", "widget-2", "widget-3", ...).
func (s *IDSet) Assign(base string) string {
	id := base
	for n := 2; s.Contains(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	s.seen[id] = struct{}{}
	return id
}

// Contains reports whether id has already been handed out.
func (s *IDSet) Contains(id string) bool {
	_, exists := s.seen[id]
	return exists
}

// Size returns the number of identifiers handed out.
func (s *IDSet) Size() int {
	return len(s.seen)
}

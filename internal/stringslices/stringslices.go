package stringslices

import (
	"strings"

	"github.com/samber/lo"
)

// ContainsFold reports whether a holds s under Unicode case folding.
func ContainsFold(a []string, s string) bool {
	return lo.ContainsBy(a, func(v string) bool {
		return strings.EqualFold(v, s)
	})
}

// Normalize lowercases and trims every element and drops the empty ones.
func Normalize(a []string) []string {
	return lo.FilterMap(a, func(v string, _ int) (string, bool) {
		v = strings.ToLower(strings.TrimSpace(v))
		return v, v != ""
	})
}

// Overlaps reports whether a and b share an element, ignoring case.
func Overlaps(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = struct{}{}
	}
	return lo.SomeBy(b, func(s string) bool {
		_, ok := set[strings.ToLower(s)]
		return ok
	})
}

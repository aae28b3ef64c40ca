package outline

import (
	"maps"
	"slices"
)

// FontProfile maps a rounded font size to the font names seen at that size,
// in encounter order.
type FontProfile map[int][]string

// BuildProfile records every span's font name under its rounded size.
func BuildProfile(spans []TextSpan) FontProfile {
	p := make(FontProfile)
	for _, s := range spans {
		p[s.FontSize] = append(p[s.FontSize], s.FontName)
	}
	return p
}

// Sizes returns the distinct sizes, largest first.
func (p FontProfile) Sizes() []int {
	sizes := slices.Sorted(maps.Keys(p))
	slices.Reverse(sizes)
	return sizes
}

// Count returns how many spans were observed at size.
func (p FontProfile) Count(size int) int {
	return len(p[size])
}

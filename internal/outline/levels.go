package outline

// Level is a heading role.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// headingLevels are handed out to the sizes below the title size, in order.
var headingLevels = [...]Level{H1, H2, H3}

// LevelMap maps a rounded font size to its heading role.
type LevelMap map[int]Level

// AssignLevels ranks the profile's sizes. The largest size is the title size;
// the next three become H1, H2 and H3. Smaller sizes are body text.
// ok is false when the profile is empty.
func AssignLevels(p FontProfile) (levels LevelMap, titleSize int, ok bool) {
	levels = make(LevelMap)
	sizes := p.Sizes()
	if len(sizes) == 0 {
		return levels, 0, false
	}

	titleSize = sizes[0]
	for i, size := range sizes[1:] {
		if i >= len(headingLevels) {
			break
		}
		levels[size] = headingLevels[i]
	}
	return levels, titleSize, true
}

// SizeOf returns the font size assigned to level, if any.
func (m LevelMap) SizeOf(level Level) (int, bool) {
	for size, l := range m {
		if l == level {
			return size, true
		}
	}
	return 0, false
}

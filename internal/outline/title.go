package outline

import "strings"

// LocateTitle returns the trimmed text of the first span on the first page
// set in the title size. It returns "" when ok is false or nothing matches.
func LocateTitle(firstPage []TextSpan, titleSize int, ok bool) string {
	if !ok {
		return ""
	}
	for _, s := range firstPage {
		if s.FontSize == titleSize {
			return strings.TrimSpace(s.Text)
		}
	}
	return ""
}

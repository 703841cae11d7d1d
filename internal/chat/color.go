package chat

import (
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#([0-9A-F]{3}|[0-9A-F]{6})$`)

// NormalizeBackground uppercases a background color and checks it is a
// plain #RGB or #RRGGBB value. Anything else yields DefaultBackground and
// false.
func NormalizeBackground(raw string) (string, bool) {
	bg := strings.ToUpper(raw)
	if !hexColor.MatchString(bg) {
		return DefaultBackground, false
	}
	return bg, true
}

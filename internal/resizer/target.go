package resizer

import (
	"regexp"
	"strconv"
	"strings"
)

var targetSizePattern = regexp.MustCompile(`(?i)^([0-9]+(\.[0-9]+)?)\s*(KB|MB)?$`)

// ParseTargetSize reads "<number>[ ]<KB|MB>" with KB as the default unit and
// MB meaning 1024 KB. Anything else, including a zero size, yields ok=false:
// callers treat an unparseable target as no target at all.
func ParseTargetSize(s string) (kb float64, ok bool) {
	m := targetSizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return 0, false
	}

	if strings.EqualFold(m[3], "MB") {
		v *= 1024
	}
	return v, true
}

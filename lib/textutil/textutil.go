package textutil

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeLabel makes provider site labels comparable with
// user-supplied filter entries ("S15 " == "s15").
func NormalizeLabel(label string) string {
	label = strings.ToLower(label)
	label = strings.Trim(label, " \n\t")
	label = whitespaceRegex.ReplaceAllString(label, "")
	return label
}

var labelRegex = regexp.MustCompile(`^([A-Za-z]*)(\d+)([A-Za-z]*)$`)

type labelKey struct {
	prefix string
	number int
	suffix string
}

func splitLabel(label string) labelKey {
	groups := labelRegex.FindStringSubmatch(strings.TrimSpace(label))
	if groups == nil {
		return labelKey{prefix: label}
	}
	number, err := strconv.Atoi(groups[2])
	if err != nil {
		return labelKey{prefix: label}
	}
	return labelKey{prefix: groups[1], number: number, suffix: groups[3]}
}

// CompareLabels orders alphanumeric site labels naturally,
// e.g. "2" < "S15" and "18" < "18B" < "92".
func CompareLabels(a, b string) int {
	ka := splitLabel(a)
	kb := splitLabel(b)

	if c := strings.Compare(ka.prefix, kb.prefix); c != 0 {
		return c
	}
	if ka.number != kb.number {
		if ka.number < kb.number {
			return -1
		}
		return 1
	}
	return strings.Compare(ka.suffix, kb.suffix)
}

// SortLabels returns a naturally sorted copy of the given labels.
func SortLabels(labels []string) []string {
	out := slices.Clone(labels)
	slices.SortFunc(out, CompareLabels)
	return out
}

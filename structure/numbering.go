package structure

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Numbering is a parsed "N.M Title" prefix.
type Numbering struct {
	Chapter int
	Section int
	// Depth is number of numbering levels, 3 for "N.M.K".
	Depth int
	Title string
}

var (
	chapterWordRe = regexp.MustCompile(`(?i)^chapter\s+(\d+)(?:\.0)?\s*[:.]?\s+`)
	ocrLeadRe     = regexp.MustCompile(`^[Il](\d*\.\d)`)
	ocrSectionRe  = regexp.MustCompile(`^(\d+)\.[Il](\s)`)
	spacedDotRe   = regexp.MustCompile(`^(\d+)\.\s+(\d+)`)
	numberRe      = regexp.MustCompile(`(?s)^(\d{1,4})\.(\d{1,4})((?:\.\d{1,4})*)(.*)$`)
	unitRe        = regexp.MustCompile(`(?i)^\s*(?:%|(?:mg|ml|kg|g|lbs?|cc|years?|months?|weeks?|days?|hours?)\b)`)
)

const titleQuotes = "\"'“”‘’«"

// normalizeNumbering brings common spelling variants of heading numbers to
// "N.M Title" form.
func normalizeNumbering(text string) string {
	text = strings.TrimSpace(text)
	if m := chapterWordRe.FindStringSubmatchIndex(text); m != nil {
		text = text[m[2]:m[3]] + ".0 " + text[m[1]:]
	}
	text = ocrLeadRe.ReplaceAllString(text, "1$1")
	text = ocrSectionRe.ReplaceAllString(text, "$1.1$2")
	return spacedDotRe.ReplaceAllString(text, "$1.$2")
}

// fixes remaps wrong numbering, keys and values are "N.M" or "N.M.K".
type fixes map[string][]int

func newFixes(src map[string]string) (fixes, error) {
	res := make(fixes, len(src))
	for from, to := range src {
		parts := strings.Split(strings.TrimSpace(to), ".")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("bad numbering fix %q -> %q: need N.M or N.M.K", from, to)
		}
		nums := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad numbering fix %q -> %q: %q is not a number", from, to, p)
			}
			nums = append(nums, n)
		}
		res[strings.TrimSpace(from)] = nums
	}
	return res, nil
}

func (f fixes) apply(n *Numbering, raw string) {
	nums, ok := f[raw]
	if !ok {
		return
	}
	n.Chapter, n.Section, n.Depth = nums[0], nums[1], len(nums)
}

// parseNumbering recognizes numbered heading text. It returns false for
// text which is not numbered, or which looks like a measurement or a
// decimal value rather than a heading.
func parseNumbering(text string, fx fixes) (Numbering, bool) {
	m := numberRe.FindStringSubmatch(normalizeNumbering(text))
	if m == nil {
		return Numbering{}, false
	}
	rest := m[4]
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
		return Numbering{}, false
	}
	if unitRe.MatchString(rest) {
		return Numbering{}, false
	}

	var n Numbering
	n.Chapter, _ = strconv.Atoi(m[1])
	n.Section, _ = strconv.Atoi(m[2])
	n.Depth = 2 + strings.Count(m[3], ".")
	fx.apply(&n, m[1]+"."+m[2]+m[3])

	n.Title = strings.Join(strings.Fields(strings.TrimLeft(rest, " \t\n.:-–—")), " ")
	if n.Chapter == 0 || utf8.RuneCountInString(n.Title) < 3 {
		return Numbering{}, false
	}
	if r, _ := utf8.DecodeRuneInString(n.Title); !unicode.IsUpper(r) && !unicode.IsDigit(r) && !strings.ContainsRune(titleQuotes, r) {
		return Numbering{}, false
	}
	return n, true
}

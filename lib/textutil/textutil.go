package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lower-cases name and strips all whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// IdentityKey is the lower-cased, trimmed form of name with inner whitespace
// collapsed to one space. Two people whose names differ only in case or
// spacing share a key.
func IdentityKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRegex.ReplaceAllString(name, " ")
}

// CollapseSpace trims s and collapses every whitespace run to one space.
func CollapseSpace(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RuneLen is the length of s in runes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Lines splits text on newlines, trims every line and drops empty ones.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ContainsAny checks if the lower-cased text contains any of the (lower-case)
// needles.
func ContainsAny(text string, needles []string) bool {
	text = strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// BestMatch returns the index of the candidate most similar to target by
// Jaro-Winkler over normalized names, along with its similarity. -1 is
// returned when candidates is empty.
func BestMatch(target string, candidates []string) (int, float64) {
	target = IdentityKey(target)
	best := -1
	var bestScore float64
	for i, c := range candidates {
		score := matchr.JaroWinkler(target, IdentityKey(c), false)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}

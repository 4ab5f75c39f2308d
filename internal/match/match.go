// Package match normalizes artist/album/track names and scores their
// similarity. Every provider worker shares the same normalization and the
// same acceptance threshold so match behavior stays predictable across
// sources.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Threshold is the minimum similarity ratio accepted as a name match.
const Threshold = 0.80

var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize lowercases a name, drops parenthetical annotations such as
// "(Remastered)" or "[Deluxe Edition]", folds diacritics, strips
// punctuation and leading articles, and collapses whitespace.
func Normalize(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return ""
	}

	lowered = stripAnnotations(lowered)
	lowered = strings.ReplaceAll(lowered, "&", " and ")

	if folded, _, err := transform.String(diacriticFolder, lowered); err == nil {
		lowered = folded
	}

	var builder strings.Builder
	builder.Grow(len(lowered))
	prevSpace := true
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				builder.WriteByte(' ')
				prevSpace = true
			}
		}
	}

	cleaned := strings.TrimSpace(builder.String())
	return stripLeadingArticle(cleaned)
}

// Matches reports whether candidate is close enough to query after
// normalization. Exact normalized equality always matches.
func Matches(query, candidate string) bool {
	return Similarity(query, candidate) >= Threshold
}

// Similarity returns the Ratcliff/Obershelp ratio of the normalized forms,
// in [0, 1].
func Similarity(query, candidate string) float64 {
	a := Normalize(query)
	b := Normalize(candidate)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return ratio([]rune(a), []rune(b))
}

// ratio implements Ratcliff/Obershelp: twice the number of matching
// characters over the total length, where matches are found by recursively
// splitting around the longest common substring.
func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 2 * float64(matchingRunes(a, b)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (int, int, int) {
	bestA, bestB, bestLen := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > bestLen {
					bestLen = curr[j]
					bestA = i - bestLen
					bestB = j - bestLen
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestA, bestB, bestLen
}

func stripAnnotations(name string) string {
	var builder strings.Builder
	builder.Grow(len(name))
	depth := 0
	for _, r := range name {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				builder.WriteRune(r)
			}
		}
	}
	return builder.String()
}

func stripLeadingArticle(name string) string {
	for _, article := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(name, article) && len(name) > len(article) {
			return name[len(article):]
		}
	}
	return name
}

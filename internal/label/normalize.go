// Package label turns free-text product, delivery and basin names into short
// display labels, basin groups and map coordinates.
package label

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parentheticalPattern = regexp.MustCompile(`\s*\([^)]*\)`)
	dashReplacer         = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// Normalize returns the comparison form of s: accents removed, lower case,
// dashes unified and whitespace collapsed.
func Normalize(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	out = dashReplacer.Replace(strings.ToLower(out))
	return strings.Join(strings.Fields(out), " ")
}

func stripParentheticals(s string) string {
	return strings.TrimSpace(parentheticalPattern.ReplaceAllString(s, ""))
}

func firstTokens(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func titleCase(s string) string {
	return cases.Title(language.Spanish).String(s)
}

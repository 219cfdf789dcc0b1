// Package offer extracts typed values out of loosely structured offer records
// and classifies their lifecycle status.
package offer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nurpe/oil-tenders/internal/model"
)

var (
	isoDayPattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	numberPattern  = regexp.MustCompile(`[+-]?\d*(?:\.\d+)?`)
	containsDigits = regexp.MustCompile(`\d`)
)

// PickString returns the first non-blank string among keys, trimmed.
func PickString(o model.Offer, keys []string) (string, bool) {
	for _, key := range keys {
		s, ok := o.Get(key).Str()
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

// PickNumber returns the first numeric value among keys. Numeric strings are
// parsed with ParseNumeric; other kinds are skipped.
func PickNumber(o model.Offer, keys []string) (float64, bool) {
	for _, key := range keys {
		v := o.Get(key)
		switch v.Kind() {
		case model.KindNumber:
			n, _ := v.Num()
			if !math.IsNaN(n) {
				return n, true
			}
		case model.KindString:
			s, _ := v.Str()
			if n, ok := ParseNumeric(s); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// PickDateISO returns the first string among keys that contains a YYYY-MM-DD
// date. The raw value is returned unchanged, including any time suffix.
func PickDateISO(o model.Offer, keys []string) (string, bool) {
	for _, key := range keys {
		s, ok := o.Get(key).Str()
		if ok && isoDayPattern.MatchString(s) {
			return s, true
		}
	}
	return "", false
}

// Text returns the first non-null scalar among keys rendered as text.
func Text(o model.Offer, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := o.Get(key).Text(); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

// Day returns the YYYY-MM-DD part of a date string.
func Day(s string) (string, bool) {
	day := isoDayPattern.FindString(s)
	return day, day != ""
}

// ParseNumeric parses a number written either in European (1.234,56) or US
// (1,234.56) notation. The rightmost separator is taken as the decimal mark.
// Absence is reported with ok=false so that a parsed zero stays distinct.
func ParseNumeric(input string) (float64, bool) {
	s := strings.TrimSpace(input)
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var candidate string
	if lastComma >= 0 && (lastDot < 0 || lastComma > lastDot) {
		candidate = strings.ReplaceAll(s, ".", "")
		candidate = strings.ReplaceAll(candidate, ",", ".")
	} else {
		candidate = strings.ReplaceAll(s, ",", "")
	}

	for _, match := range numberPattern.FindAllString(candidate, -1) {
		if !containsDigits.MatchString(match) {
			continue
		}
		n, err := strconv.ParseFloat(match, 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

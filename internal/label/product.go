package label

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

var productLabels = map[string]string{
	"crudo":                   "Crudo",
	"crude":                   "Crudo",
	"crude oil":               "Crudo",
	"petroleo crudo":          "Crudo",
	"crudo medanito":          "Crudo Medanito",
	"crudo escalante":         "Crudo Escalante",
	"gasoil":                  "Gasoil",
	"gas oil":                 "Gasoil",
	"diesel":                  "Gasoil",
	"diesel oil":              "Gasoil",
	"ulsd":                    "ULSD",
	"ultra low sulfur diesel": "ULSD",
	"nafta":                   "Nafta",
	"gasolina":                "Nafta",
	"gasoline":                "Nafta",
	"jet a-1":                 "Jet A-1",
	"jet a1":                  "Jet A-1",
	"jet fuel":                "Jet A-1",
	"fuel oil":                "Fuel Oil",
	"fueloil":                 "Fuel Oil",
	"glp":                     "GLP",
	"lpg":                     "GLP",
}

type productRule struct {
	pattern *regexp.Regexp
	label   func(match []string) string
}

func fixed(label string) func([]string) string {
	return func([]string) string { return label }
}

var crudeBlends = []struct{ keyword, name string }{
	{"medanito", "Medanito"},
	{"escalante", "Escalante"},
	{"canadon seco", "Cañadón Seco"},
	{"hidra", "Hidra"},
}

// Applied in order to the normalized name when the dictionary misses.
var productRules = []productRule{
	{regexp.MustCompile(`(?:gas ?oil|diesel)\b.*?(\d+)\s*ppm`), func(m []string) string { return "Gasoil " + m[1] + "ppm" }},
	{regexp.MustCompile(`(?:gas ?oil|diesel)\b.*?\bgrado\s*(\d)`), func(m []string) string { return "Gasoil G" + m[1] }},
	{regexp.MustCompile(`\bulsd\b|ultra low sulfur`), fixed("ULSD")},
	{regexp.MustCompile(`\bjet\b|kerosen|\bjp-?1\b`), fixed("Jet A-1")},
	{regexp.MustCompile(`fuel ?oil|\bifo\b|bunker`), fixed("Fuel Oil")},
	{regexp.MustCompile(`\bglp\b|\blpg\b|propan|butan`), fixed("GLP")},
	{regexp.MustCompile(`nafta|gasolin`), fixed("Nafta")},
	{regexp.MustCompile(`gas ?oil|diesel`), fixed("Gasoil")},
	{regexp.MustCompile(`crud[oe]|petroleo`), func(m []string) string {
		for _, blend := range crudeBlends {
			if strings.Contains(m[0], blend.keyword) {
				return "Crudo " + blend.name
			}
		}
		return "Crudo"
	}},
}

// ShortenProduct maps a free-text product name to a short display label.
func ShortenProduct(raw string) string {
	n := Normalize(raw)
	if n == "" {
		return strings.TrimSpace(raw)
	}
	if label, ok := productLabels[n]; ok {
		return label
	}
	for _, rule := range productRules {
		if m := rule.pattern.FindStringSubmatch(n); m != nil {
			m[0] = n
			return rule.label(m)
		}
	}
	reduced := firstTokens(stripParentheticals(raw), 3)
	if reduced == "" {
		return strings.TrimSpace(raw)
	}
	return titleCase(reduced)
}

// ShortCode is a stable four character code for s: a 32-bit FNV-1a style hash
// over UTF-16 code units, base 36, truncated.
func ShortCode(s string) string {
	h := uint32(0x811c9dc5)
	for _, c := range utf16.Encode([]rune(s)) {
		h ^= uint32(c)
		h *= 0x01000193
	}
	code := strconv.FormatUint(uint64(h), 36)
	if len(code) > 4 {
		code = code[:4]
	}
	return code
}

// DisambiguateProducts labels every distinct raw name. Names whose short
// label collides with another name get the upper-cased ShortCode appended.
func DisambiguateProducts(names []string) map[string]string {
	shortByName := make(map[string]string, len(names))
	counts := make(map[string]int, len(names))
	for _, name := range names {
		if _, seen := shortByName[name]; seen {
			continue
		}
		short := ShortenProduct(name)
		shortByName[name] = short
		counts[short]++
	}

	labels := make(map[string]string, len(shortByName))
	for name, short := range shortByName {
		if counts[short] > 1 {
			labels[name] = fmt.Sprintf("%s (%s)", short, strings.ToUpper(ShortCode(name)))
			continue
		}
		labels[name] = short
	}
	return labels
}

package label

import (
	"regexp"
	"strings"
)

// Argentine loading ports and terminals, keyed by normalized name.
var portLabels = map[string]string{
	"bahia blanca":       "Bahía Blanca",
	"ingeniero white":    "Ing. White",
	"ing. white":         "Ing. White",
	"puerto rosales":     "Pto. Rosales",
	"rosales":            "Pto. Rosales",
	"caleta cordova":     "Caleta Córdova",
	"caleta olivia":      "Caleta Olivia",
	"comodoro rivadavia": "Comodoro Rivadavia",
	"punta loyola":       "Punta Loyola",
	"rio gallegos":       "Río Gallegos",
	"puerto deseado":     "Pto. Deseado",
	"deseado":            "Pto. Deseado",
	"san julian":         "San Julián",
	"san lorenzo":        "San Lorenzo",
	"campana":            "Campana",
	"zarate":             "Zárate",
	"dock sud":           "Dock Sud",
	"la plata":           "La Plata",
	"ensenada":           "Ensenada",
	"san antonio este":   "San Antonio Este",
	"puerto madryn":      "Pto. Madryn",
	"madryn":             "Pto. Madryn",
	"ushuaia":            "Ushuaia",
	"rio grande":         "Río Grande",
	"san sebastian":      "San Sebastián",
}

var deliveryPrefixPattern = regexp.MustCompile(`(?i)^(?:(?:puerto|puerta|port)\s+(?:(?:de|of)\s+)?|terminal\s+(?:de\s+)?|muelle\s+|pto\.\s*)`)

// ShortenDelivery maps a delivery location, port or terminal to a short
// display label.
func ShortenDelivery(raw string) string {
	if label, ok := portLabels[Normalize(raw)]; ok {
		return label
	}

	reduced := strings.TrimSpace(raw)
	for {
		next := strings.TrimSpace(deliveryPrefixPattern.ReplaceAllString(reduced, ""))
		if next == reduced {
			break
		}
		reduced = next
	}
	reduced = firstTokens(stripParentheticals(reduced), 3)
	if reduced == "" {
		return raw
	}
	if label, ok := portLabels[Normalize(reduced)]; ok {
		return label
	}
	return titleCase(reduced)
}

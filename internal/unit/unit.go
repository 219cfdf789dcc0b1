// Package unit converts volumes between cubic meters and barrels.
package unit

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Unit string

const (
	CubicMeter Unit = "m3"
	Barrel     Unit = "bbl"
)

// BarrelsPerCubicMeter is the fixed conversion factor: 1 m³ = 6.28981 bbl.
const BarrelsPerCubicMeter = 6.28981

var ErrUnknownUnit = errors.New("unknown volume unit")

// Convert converts value between units. NaN and infinities convert to 0.
// Callers sum in the source unit first and convert the total.
func Convert(value float64, from, to Unit) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if from == to {
		return value
	}
	switch {
	case from == CubicMeter && to == Barrel:
		return value * BarrelsPerCubicMeter
	case from == Barrel && to == CubicMeter:
		return value / BarrelsPerCubicMeter
	default:
		return value
	}
}

func Parse(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m3", "m³", "cubic_meters":
		return CubicMeter, nil
	case "bbl", "bbls", "barrel", "barrels":
		return Barrel, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, raw)
	}
}

// Suffix is the display suffix appended to formatted volumes.
func Suffix(u Unit) string {
	if u == Barrel {
		return " bbl"
	}
	return " m³"
}

func (u Unit) Valid() bool {
	return u == CubicMeter || u == Barrel
}

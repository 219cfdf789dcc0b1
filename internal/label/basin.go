package label

import (
	"regexp"
	"sort"
	"strings"
)

type BasinGroup int

const (
	GroupOther BasinGroup = iota
	GroupNeuquina
	GroupGolfoSanJorge
	GroupAustral
	GroupNoroeste
	GroupCuyana
)

var (
	groupNames  = [...]string{"Otro", "Neuquina", "Golfo San Jorge", "Austral", "Noroeste", "Cuyana"}
	groupColors = [...]string{"#94a3b8", "#22c55e", "#3b82f6", "#ef4444", "#a855f7", "#f59e0b"}
)

// Groups lists every group, the fallback last.
func Groups() []BasinGroup {
	return []BasinGroup{GroupNeuquina, GroupGolfoSanJorge, GroupAustral, GroupNoroeste, GroupCuyana, GroupOther}
}

func (g BasinGroup) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return groupNames[GroupOther]
	}
	return groupNames[g]
}

// Color is the flow diagram color of the group.
func (g BasinGroup) Color() string {
	if g < 0 || int(g) >= len(groupColors) {
		return groupColors[GroupOther]
	}
	return groupColors[g]
}

func (g BasinGroup) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

type groupRule struct {
	group    BasinGroup
	keywords []*regexp.Regexp
}

// Order matters: "Neuquina – Mendoza" belongs to Neuquina, not Cuyana.
var groupRules = []groupRule{
	{GroupNeuquina, words("neuquina", "neuquen", "medanito")},
	{GroupGolfoSanJorge, words("golfo", "san jorge")},
	{GroupAustral, words("austral", "tierra del fuego", "santa cruz", "san sebastian")},
	{GroupNoroeste, words("noroeste", "noa", "salta", "jujuy", "formosa")},
	{GroupCuyana, words("cuyana", "mendoza", "san juan", "san luis")},
}

func words(keywords ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return out
}

// ClassifyBasin buckets a basin name into a geographic group. ok is false
// when no keyword matches.
func ClassifyBasin(name string) (BasinGroup, bool) {
	n := Normalize(name)
	if n == "" {
		return GroupOther, false
	}
	for _, rule := range groupRules {
		for _, kw := range rule.keywords {
			if kw.MatchString(n) {
				return rule.group, true
			}
		}
	}
	return GroupOther, false
}

// GroupOf is ClassifyBasin with unmatched names in GroupOther.
func GroupOf(name string) BasinGroup {
	g, _ := ClassifyBasin(name)
	return g
}

// Coord is a [longitude, latitude] pair.
type Coord [2]float64

func (c Coord) Lon() float64 { return c[0] }

func (c Coord) Lat() float64 { return c[1] }

// DefaultCoord is used on the map when a basin cannot be resolved.
var DefaultCoord = Coord{-64.0, -40.5}

const (
	neuquinaNeuquen  = "Neuquina – Neuquén (Medanito)"
	neuquinaRioNegro = "Neuquina – Río Negro (Medanito)"
	neuquinaLaPampa  = "Neuquina – La Pampa (Medanito)"
	neuquinaMendoza  = "Neuquina – Mendoza"
	golfoChubut      = "Golfo San Jorge – Chubut (Escalante / Cañadón Seco)"
	golfoSanJorge    = "Golfo San Jorge"
	australFuegoOff  = "Austral – Tierra del Fuego Off Shore (Hidra)"
	australCruzOn    = "Austral – Santa Cruz On Shore"
	australCruzOff   = "Austral – Santa Cruz Off Shore"
	australSebastian = "Austral – Tierra del Fuego – San Sebastián"
	australAggregate = "Austral"
	noroesteSalta    = "Noroeste – Salta"
	cuyanaAggregate  = "Cuyana"
)

var basinCoords = map[string]Coord{
	neuquinaNeuquen:   {-69.126565, -38.543328},
	neuquinaRioNegro:  {-67.385008, -38.956695},
	neuquinaLaPampa:   {-67.965527, -37.288923},
	neuquinaMendoza:   {-69.378964, -35.685917},
	"Neuquina":        {-69.126565, -38.543328},
	"Cuenca Neuquina": {-69.126565, -38.543328},

	golfoChubut:                  {-68.5, -46.0},
	golfoSanJorge:                {-68.5, -46.0},
	"Cuenca del Golfo San Jorge": {-68.5, -46.0},

	australFuegoOff:  {-67.0, -54.0},
	australCruzOn:    {-70.0, -50.0},
	australCruzOff:   {-68.0, -52.0},
	australSebastian: {-66.5, -54.5},
	australAggregate: {-68.5, -52.0},
	"Cuenca Austral": {-68.5, -52.0},

	noroesteSalta:         {-65.5, -24.5},
	"Noroeste":            {-65.5, -24.5},
	"Cuenca del Noroeste": {-65.5, -24.5},

	cuyanaAggregate: {-68.8, -32.6},
	"Cuenca Cuyana": {-68.8, -32.6},
}

var sortedBasinKeys = func() []string {
	keys := make([]string, 0, len(basinCoords))
	for k := range basinCoords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// BasinCoords resolves a basin name to coordinates: exact, case-insensitive
// and accent-insensitive table lookups first, then province heuristics that
// pick the most specific sub-region.
func BasinCoords(name string) (Coord, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Coord{}, false
	}
	if c, ok := basinCoords[name]; ok {
		return c, true
	}
	for _, k := range sortedBasinKeys {
		if strings.EqualFold(k, name) {
			return basinCoords[k], true
		}
	}
	n := Normalize(name)
	for _, k := range sortedBasinKeys {
		if Normalize(k) == n {
			return basinCoords[k], true
		}
	}

	group, ok := ClassifyBasin(name)
	if !ok {
		return Coord{}, false
	}
	has := func(s string) bool { return strings.Contains(n, s) }

	switch group {
	case GroupNeuquina:
		switch {
		case has("rio negro"):
			return basinCoords[neuquinaRioNegro], true
		case has("la pampa"):
			return basinCoords[neuquinaLaPampa], true
		case has("mendoza"):
			return basinCoords[neuquinaMendoza], true
		default:
			return basinCoords[neuquinaNeuquen], true
		}
	case GroupGolfoSanJorge:
		if has("chubut") || has("escalante") || has("canadon seco") {
			return basinCoords[golfoChubut], true
		}
		return basinCoords[golfoSanJorge], true
	case GroupAustral:
		offshore := has("off")
		switch {
		case has("fuego") && offshore:
			return basinCoords[australFuegoOff], true
		case has("santa cruz") && offshore:
			return basinCoords[australCruzOff], true
		case has("santa cruz"):
			return basinCoords[australCruzOn], true
		case has("san sebastian"):
			return basinCoords[australSebastian], true
		default:
			return basinCoords[australAggregate], true
		}
	case GroupNoroeste:
		return basinCoords[noroesteSalta], true
	case GroupCuyana:
		return basinCoords[cuyanaAggregate], true
	}
	return Coord{}, false
}

// CoordsOrDefault never fails; unresolved basins land on DefaultCoord.
func CoordsOrDefault(name string) Coord {
	if c, ok := BasinCoords(name); ok {
		return c
	}
	return DefaultCoord
}

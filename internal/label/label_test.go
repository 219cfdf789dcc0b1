package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "rio negro - sur", Normalize("  Río   Negro – Sur "))
	assert.Equal(t, "canadon seco", Normalize("CAÑADÓN SECO"))
	assert.Equal(t, "", Normalize("   "))
}

func TestShortenProduct(t *testing.T) {
	cases := map[string]string{
		"Diesel":            "Gasoil",
		"GAS OIL":           "Gasoil",
		"Petróleo crudo":    "Crudo",
		"Gasoil Grado 2":    "Gasoil G2",
		"Gasoil 10 ppm S":   "Gasoil 10ppm",
		"diesel 500ppm":     "Gasoil 500ppm",
		"ULSD cargo":        "ULSD",
		"Jet A1 aviation":   "Jet A-1",
		"IFO 380":           "Fuel Oil",
		"Propano comercial": "GLP",
		"Nafta súper 95":    "Nafta",
		"Petróleo Crudo Medanito tipo exportación": "Crudo Medanito",
		"Asfalto Modificado AM3 (granel)":          "Asfalto Modificado Am3",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortenProduct(in), "input %q", in)
	}
}

func TestShortCodeIsStable(t *testing.T) {
	assert.Equal(t, "1r9w", ShortCode("a"))
	assert.Equal(t, "1b8n", ShortCode("Diesel"))
	assert.Equal(t, "1z13", ShortCode("Gas Oil"))
	assert.Equal(t, "3cr0", ShortCode("Petróleo Crudo"))
	for i := 0; i < 3; i++ {
		assert.Equal(t, ShortCode("Gasoil Grado 2"), "n219")
	}
}

func TestDisambiguateProducts(t *testing.T) {
	names := []string{"Diesel", "Gas Oil", "Nafta", "Diesel"}
	labels := DisambiguateProducts(names)

	require.Len(t, labels, 3)
	assert.Equal(t, "Gasoil (1B8N)", labels["Diesel"])
	assert.Equal(t, "Gasoil (1Z13)", labels["Gas Oil"])
	assert.Equal(t, "Nafta", labels["Nafta"])
	assert.NotEqual(t, labels["Diesel"], labels["Gas Oil"])

	again := DisambiguateProducts([]string{"Gas Oil", "Nafta", "Diesel"})
	assert.Equal(t, labels, again)
}

func TestShortenDelivery(t *testing.T) {
	cases := map[string]string{
		"Puerto Rosales":                       "Pto. Rosales",
		"Terminal Puerto Rosales (Oiltanking)": "Pto. Rosales",
		"Pto. Madryn":                          "Pto. Madryn",
		"Port of Bahia Blanca":                 "Bahía Blanca",
		"CALETA CÓRDOVA":                       "Caleta Córdova",
		"Terminal Escobar GNL Flotante":        "Escobar Gnl Flotante",
		"(sin dato)":                           "(sin dato)",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortenDelivery(in), "input %q", in)
	}
}

func TestClassifyBasin(t *testing.T) {
	cases := []struct {
		in   string
		want BasinGroup
		ok   bool
	}{
		{"Neuquina – Mendoza", GroupNeuquina, true},
		{"Cuenca Cuyana", GroupCuyana, true},
		{"Mendoza norte", GroupCuyana, true},
		{"NOA", GroupNoroeste, true},
		{"Golfo San Jorge", GroupGolfoSanJorge, true},
		{"Tierra del Fuego", GroupAustral, true},
		{"Neuquén", GroupNeuquina, true},
		{"Offshore Argentino", GroupOther, false},
		{"", GroupOther, false},
	}
	for _, tc := range cases {
		got, ok := ClassifyBasin(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
	assert.Equal(t, GroupOther, GroupOf("Plataforma Continental"))
}

func TestBasinGroupPalette(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range Groups() {
		assert.NotEmpty(t, g.String())
		seen[g.Color()] = true
	}
	assert.Len(t, seen, 6)
	assert.Equal(t, "#94a3b8", GroupOther.Color())
	assert.Equal(t, "Otro", BasinGroup(99).String())

	text, err := GroupGolfoSanJorge.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Golfo San Jorge", string(text))
}

func TestBasinCoords(t *testing.T) {
	cases := []struct {
		in   string
		want Coord
	}{
		{"Neuquina – Río Negro (Medanito)", Coord{-67.385008, -38.956695}},
		{"NEUQUINA – RÍO NEGRO (MEDANITO)", Coord{-67.385008, -38.956695}},
		{"neuquina rio negro", Coord{-67.385008, -38.956695}},
		{"Neuquina La Pampa", Coord{-67.965527, -37.288923}},
		{"Neuquina norte", Coord{-69.126565, -38.543328}},
		{"cuenca austral", Coord{-68.5, -52.0}},
		{"Austral Santa Cruz offshore", Coord{-68.0, -52.0}},
		{"Austral Santa Cruz", Coord{-70.0, -50.0}},
		{"Austral San Sebastián", Coord{-66.5, -54.5}},
		{"Golfo San Jorge - Chubut", Coord{-68.5, -46.0}},
		{"Salta", Coord{-65.5, -24.5}},
		{"Mendoza norte", Coord{-68.8, -32.6}},
	}
	for _, tc := range cases {
		got, ok := BasinCoords(tc.in)
		require.True(t, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}

	_, ok := BasinCoords("Plataforma Continental")
	assert.False(t, ok)
	assert.Equal(t, DefaultCoord, CoordsOrDefault("Plataforma Continental"))
	assert.Equal(t, -64.0, DefaultCoord.Lon())
	assert.Equal(t, -40.5, DefaultCoord.Lat())
}

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/service-desk/internal/domain"
)

func testCatalog() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ID: "eq-1", Name: "Autoclave Tuttnauer 2540", Brand: "Tuttnauer", Model: "2540M", ClientName: "Clinica Norte SRL"},
		{ID: "eq-2", Name: "Centrifuga Gemmy", Brand: "Gemmy", Model: "PLC-05", ClientName: "Laboratorio Central SA"},
		{ID: "eq-3", Name: "Compresor dental", Brand: "Schulz", Model: "MSV-6", ClientName: "Odontologia Sur SRL"},
	}
}

func TestResolveClientScenario(t *testing.T) {
	match := Resolve("URGENTE no enciende el equipo de Clinica Norte", testCatalog())

	require.NotNil(t, match.Client)
	assert.Equal(t, "Clinica", match.Client.ShortName)
	assert.Equal(t, "Clinica Norte SRL", match.Client.LegalName)
}

func TestResolveEquipmentByBrand(t *testing.T) {
	match := Resolve("se rompió el autoclave tuttnauer de la guardia", testCatalog())

	require.NotNil(t, match.Equipment)
	assert.Equal(t, "eq-1", match.Equipment.ID)
	assert.Equal(t, "Autoclave Tuttnauer 2540", match.Equipment.Name)
}

func TestResolveHighestScoreWins(t *testing.T) {
	// Mentions both the Gemmy centrifuge and the Schulz compressor;
	// the centrifuge scores higher via its model number.
	match := Resolve("la centrifuga gemmy plc-05 hace ruido, no es el compresor", testCatalog())

	require.NotNil(t, match.Equipment)
	assert.Equal(t, "eq-2", match.Equipment.ID)
}

func TestResolveTieKeepsFirstEntry(t *testing.T) {
	entries := []domain.CatalogEntry{
		{ID: "a", Name: "Bomba periférica", Brand: "Rowa", ClientName: "Cliente Uno"},
		{ID: "b", Name: "Bomba centrífuga", Brand: "Rowa", ClientName: "Cliente Dos"},
	}

	match := Resolve("la bomba rowa pierde agua", entries)
	require.NotNil(t, match.Equipment)
	assert.Equal(t, "a", match.Equipment.ID)
}

func TestResolveNoMatchIsEmpty(t *testing.T) {
	match := Resolve("no funciona nada de lo que instalaron", testCatalog())

	assert.Nil(t, match.Equipment)
	assert.Nil(t, match.Client)
}

func TestResolveClientOnlyFallback(t *testing.T) {
	// No equipment words at all, but the client is named.
	match := Resolve("problema en laboratorio central, pasen cuando abran", testCatalog())

	require.NotNil(t, match.Client)
	assert.Equal(t, "Laboratorio", match.Client.ShortName)
	assert.Nil(t, match.Equipment)
}

func TestShortClientNameSkipsLegalSuffixes(t *testing.T) {
	cases := map[string]string{
		"Clinica Norte SRL":       "Clinica",
		"SRL Distribuidora Oeste": "Distribuidora",
		"S.A. La Esperanza":       "La",
	}
	for legal, want := range cases {
		assert.Equal(t, want, shortClientName(legal), "legal name %q", legal)
	}
}

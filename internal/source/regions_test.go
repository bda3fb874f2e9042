package source

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
)

func TestPatchUNSD(t *testing.T) {
	in := []byte("<tr><td>652</td><td>Saint-Barthélemy</td></tr>\n<td>663</td></tr><tr><td>Saint-Barthélemy</td></tr>")
	out := PatchUNSD(in)
	assert.Equal(t, "<tr><td>652</td><td>Saint-Barthélemy</td></tr><tr>\n<td>663</td></tr><tr><td>Saint-Barthélemy</td></tr>", string(out))

	clean := []byte("<tr><td>410</td></tr>")
	assert.Equal(t, clean, PatchUNSD(clean))
}

func TestRegionParser_Parse(t *testing.T) {
	page, err := os.ReadFile("testdata/unsd.html")
	require.NoError(t, err)

	kr := &model.Country{ISOTwoLetterCode: "KR", ISOThreeDigitCode: "410"}
	mc := &model.Country{ISOTwoLetterCode: "MC", ISOThreeDigitCode: "492"}
	aq := &model.Country{ISOTwoLetterCode: "AQ", ISOThreeDigitCode: "010"}

	p := &RegionParser{Endpoints: testEndpoints, Pages: overrides.Default().Pages}
	continents, regions, err := p.Parse(page, []*model.Country{kr, mc, aq})
	require.NoError(t, err)

	require.Len(t, continents, 3)
	assert.Equal(t, "019", continents[0].UNM49Code)
	assert.Equal(t, "http://wiki.test/wiki/Americas", continents[0].SourceURL)
	assert.Equal(t, "142", continents[1].UNM49Code)
	assert.Equal(t, "http://wiki.test/wiki/Asia", continents[1].SourceURL)

	require.Len(t, regions, 3)
	latam, eastAsia, westEurope := regions[0], regions[1], regions[2]
	assert.Equal(t, "419", latam.UNM49Code)
	assert.Equal(t, "http://wiki.test/wiki/Community_of_Latin_American_and_Caribbean_States", latam.SourceURL)
	assert.Same(t, continents[0], latam.Continent)
	assert.Empty(t, latam.Countries)

	assert.Equal(t, "030", eastAsia.UNM49Code)
	assert.Equal(t, "http://wiki.test/wiki/Eastern_Asia", eastAsia.SourceURL)
	assert.Same(t, continents[1], eastAsia.Continent)
	assert.Equal(t, []*model.Region{eastAsia}, continents[1].Regions)

	// The developing-regions block after the second header is not read, so
	// KR stays in Eastern Asia only once.
	assert.Equal(t, []*model.Country{kr}, eastAsia.Countries)
	assert.Same(t, eastAsia, kr.Region)
	assert.Same(t, westEurope, mc.Region)
	assert.Nil(t, aq.Region)
	assert.Len(t, continents[2].Regions, 1)
}

func TestRegionParser_RegionBeforeContinent(t *testing.T) {
	page := []byte(`<table><tr><td class="content" width="100%">
<table></table><table></table><table></table>
<table><tr><td>030</td><td><b>Eastern Asia</b></td></tr></table>
</td></tr></table>`)

	p := &RegionParser{Endpoints: testEndpoints}
	_, _, err := p.Parse(page, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before any continent")
}

func TestRegionParser_TableMissing(t *testing.T) {
	p := &RegionParser{Endpoints: testEndpoints}
	_, _, err := p.Parse([]byte(`<html><body></body></html>`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not found")
}

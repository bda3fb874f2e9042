package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countries-cli/internal/model"
	"github.com/sells-group/countries-cli/internal/overrides"
)

func testParser() *SubdivisionParser {
	return &SubdivisionParser{Endpoints: testEndpoints, Overrides: overrides.Default()}
}

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		header string
		want   ColumnRole
	}{
		{"Code", ColumnCode},
		{"ISO 3166-2 code", ColumnCode},
		{"Subdivision category", ColumnCategory},
		{"In region", ColumnParent},
		{"Parent subdivision", ColumnParent},
		{"Subdivision name (en)", ColumnUnknown},
		{"Local variant", ColumnUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveColumn(tt.header), tt.header)
	}
}

func TestCategoryFromHeading(t *testing.T) {
	tests := []struct {
		heading string
		want    string
		ok      bool
	}{
		{"Provinces", "Province", true},
		{"Municipalities", "Municipality", true},
		{"Parishes", "Parish", true},
		{"Chains (of islands)", "Chain", true},
		{"47 counties", "County", true},
		{"Counties", "County", true},
		{"Autonomous republic", "Autonomous republic", true},
		{"Capital city", "", false},
	}
	for _, tt := range tests {
		got, ok := CategoryFromHeading(tt.heading)
		assert.Equal(t, tt.ok, ok, tt.heading)
		assert.Equal(t, tt.want, got, tt.heading)
	}
}

func TestSubdivisionParser_CategoryColumn(t *testing.T) {
	page := `<html><body>
<div class="mw-heading mw-heading2"><h2 id="Current_codes">Current codes</h2></div>
<p>Subdivision names are listed as in the ISO 3166-2 standard.</p>
<table class="wikitable sortable">
<tr><th>Code</th><th>Subdivision name (en)</th><th>Subdivision category</th></tr>
<tr><td>kr-11</td><td><a href="/wiki/Seoul">Seoul</a></td><td>special city</td></tr>
<tr><td>KR-26</td><td><a href="/wiki/File:Busan.svg">logo</a><a href="/wiki/Busan">Busan</a></td><td>metropolitan city</td></tr>
<tr><td>KR-11</td><td><a href="/wiki/Seoul">Seoul again</a></td><td>special city</td></tr>
<tr><td>KR-50</td><td><a href="/w/index.php?title=Sejong&amp;action=edit&amp;redlink=1">Sejong</a></td><td>special self-governing city</td></tr>
<tr><td>KR-41</td><td>Gyeonggi-do<sup class="reference"><a href="#cite_note-1">[1]</a></sup></td><td>province</td></tr>
<tr><td>KR-42</td><td><sup class="reference"><a href="#cite_note-2">[2]</a></sup><a href="/wiki/Gangwon_Province">Gangwon</a></td><td>province</td></tr>
<tr><td>KR-49</td><td><a href="https://www.jeju.go.kr/">Jeju</a></td><td>special self-governing province</td></tr>
</table>
<div class="mw-heading mw-heading2"><h2 id="Changes">Changes</h2></div>
<table class="wikitable"><tr><th>Code</th></tr><tr><td>KR-99</td></tr></table>
</body></html>`

	kr := &model.Country{ISOTwoLetterCode: "KR"}
	subs, err := testParser().Parse(strings.NewReader(page), kr)
	require.NoError(t, err)
	require.Len(t, subs, 6)

	assert.Equal(t, "KR-11", subs[0].ISOCountrySubdivisionCode)
	assert.Equal(t, "11", subs[0].ISOSubdivisionCode)
	assert.Equal(t, "Special city", subs[0].ISOSubdivisionCategory)
	assert.Equal(t, "http://wiki.test/wiki/Seoul", subs[0].SourceURL)
	assert.Empty(t, subs[0].Name)

	assert.Equal(t, "http://wiki.test/wiki/Busan", subs[1].SourceURL)

	// Red links are not followed; the name comes from the next column.
	assert.Equal(t, "KR-50", subs[2].ISOCountrySubdivisionCode)
	assert.Empty(t, subs[2].SourceURL)
	assert.Equal(t, "Sejong", subs[2].Name)

	// Footnotes and external links are not page links.
	assert.Equal(t, "KR-41", subs[3].ISOCountrySubdivisionCode)
	assert.Empty(t, subs[3].SourceURL)
	assert.Equal(t, "Gyeonggi-do[1]", subs[3].Name)
	assert.Equal(t, "Province", subs[3].ISOSubdivisionCategory)
	assert.Equal(t, "http://wiki.test/wiki/Gangwon_Province", subs[4].SourceURL)
	assert.Empty(t, subs[5].SourceURL)
	assert.Equal(t, "Jeju", subs[5].Name)

	assert.Equal(t, subs, kr.Subdivisions)
	for _, s := range subs {
		assert.Same(t, kr, s.Country)
	}
}

func TestSubdivisionParser_SuppressedOverrideAndDefaultCategory(t *testing.T) {
	page := `<html><body>
<h2><span class="mw-headline" id="Current_codes">Current codes</span></h2>
<table class="wikitable">
<tr><th>Code</th><th>Subdivision name</th></tr>
<tr><td>MC-GA</td><td><a href="/wiki/La_Gare">La Gare</a></td></tr>
<tr><td>MC-MO</td><td><a href="/wiki/Monaco-Ville">Monaco-Ville</a></td></tr>
</table>
</body></html>`

	mc := &model.Country{ISOTwoLetterCode: "MC"}
	subs, err := testParser().Parse(strings.NewReader(page), mc)
	require.NoError(t, err)
	require.Len(t, subs, 2)

	ga := subs[0]
	assert.Empty(t, ga.SourceURL)
	assert.Equal(t, "La Gare", ga.Name)
	assert.Equal(t, "Quarter", ga.ISOSubdivisionCategory)

	assert.Equal(t, "http://wiki.test/wiki/Monaco-Ville", subs[1].SourceURL)
	assert.Equal(t, "Quarter", subs[1].ISOSubdivisionCategory)
}

func TestSubdivisionParser_OverrideURL(t *testing.T) {
	page := `<html><body>
<h2 id="Current_codes">Current codes</h2>
<table><tr><th>Code</th><th>Name</th></tr>
<tr><td>CN-46</td><td><a href="/wiki/Hainan">Hainan</a></td></tr></table>
</body></html>`

	subs, err := testParser().Parse(strings.NewReader(page), &model.Country{ISOTwoLetterCode: "CN"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Qiong", subs[0].SourceURL)
}

func TestSubdivisionParser_Hierarchy(t *testing.T) {
	page := `<html><body>
<div class="mw-heading mw-heading2"><h2 id="Current_codes">Current codes</h2></div>
<div class="mw-heading mw-heading3"><h3 id="Regions">Regions</h3></div>
<table class="wikitable">
<tr><th>Code</th><th>Subdivision name</th></tr>
<tr><td>FR-ARA</td><td><a href="/wiki/Auvergne-Rh%C3%B4ne-Alpes">Auvergne-Rhône-Alpes</a></td></tr>
<tr><td>FR-BRE</td><td><a href="/wiki/Brittany">Brittany</a></td></tr>
</table>
<div class="mw-heading mw-heading3"><h3 id="Departments">Departments</h3></div>
<table class="wikitable">
<tr><th>Code</th><th>Subdivision name</th><th>In region</th></tr>
<tr><td>FR-01</td><td><a href="/wiki/Ain">Ain</a></td><td><a href="#">FR-ARA</a></td></tr>
<tr><td>FR-29</td><td><a href="/wiki/Finist%C3%A8re">Finistère</a></td><td>BRE</td></tr>
<tr><td>FR-75C</td><td><a href="/wiki/Paris">Paris</a></td><td>—</td></tr>
<tr><td>FR-99</td><td><a href="/wiki/Nowhere">Nowhere</a></td><td>ZZZ</td></tr>
</table>
</body></html>`

	fr := &model.Country{ISOTwoLetterCode: "FR"}
	subs, err := testParser().Parse(strings.NewReader(page), fr)
	require.NoError(t, err)
	require.Len(t, subs, 6)

	ara, bre := subs[0], subs[1]
	assert.Equal(t, "Region", ara.ISOSubdivisionCategory)
	assert.Nil(t, ara.Parent)

	ain, fin, paris, nowhere := subs[2], subs[3], subs[4], subs[5]
	assert.Equal(t, "Department", ain.ISOSubdivisionCategory)
	assert.Same(t, ara, ain.Parent)
	assert.Same(t, bre, fin.Parent)
	assert.Nil(t, paris.Parent)
	assert.Nil(t, nowhere.Parent)

	assert.Equal(t, []*model.Subdivision{ain}, ara.SubSubdivisions)
	assert.Equal(t, []*model.Subdivision{fin}, bre.SubSubdivisions)
}

func TestSubdivisionParser_EachHeadingSetsCategory(t *testing.T) {
	page := `<html><body>
<div class="mw-heading mw-heading2"><h2 id="Current_codes">Current codes</h2></div>
<div class="mw-heading mw-heading3"><h3 id="Provinces">Provinces</h3></div>
<table class="wikitable">
<tr><th>Code</th><th>Subdivision name</th></tr>
<tr><td>PH-ABR</td><td><a href="/wiki/Abra_(province)">Abra</a></td></tr>
</table>
<div class="mw-heading mw-heading3"><h3 id="Municipalities">Municipalities</h3></div>
<table class="wikitable">
<tr><th>Code</th><th>Subdivision name</th></tr>
<tr><td>PH-00</td><td><a href="/wiki/Metro_Manila">Metro Manila</a></td></tr>
</table>
</body></html>`

	subs, err := testParser().Parse(strings.NewReader(page), &model.Country{ISOTwoLetterCode: "PH"})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Province", subs[0].ISOSubdivisionCategory)
	assert.Equal(t, "Municipality", subs[1].ISOSubdivisionCategory)
}

func TestSubdivisionParser_NoCurrentCodes(t *testing.T) {
	subs, err := testParser().Parse(strings.NewReader(`<html><body><h2 id="History">History</h2></body></html>`), &model.Country{ISOTwoLetterCode: "AQ"})
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Special city", capitalize("special city"))
	assert.Equal(t, "Île", capitalize("île"))
	assert.Equal(t, "", capitalize(""))
}

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubdivision_SuffixIsTrailingComponent(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"KR-11", "11"},
		{"GB-ENG", "ENG"},
		{"FR-75C", "75C"},
		{"XX", "XX"},
		{"A-B-C", "C"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			s := NewSubdivision(tt.code)
			assert.Equal(t, tt.code, s.ISOCountrySubdivisionCode)
			assert.Equal(t, tt.want, s.ISOSubdivisionCode)
		})
	}
}

func TestLinksAreBidirectionalAndUnique(t *testing.T) {
	asia := &Continent{UNM49Code: "142"}
	east := &Region{UNM49Code: "030"}
	kr := &Country{ISOTwoLetterCode: "KR"}
	seoul := NewSubdivision("KR-11")
	gangnam := NewSubdivision("KR-11-GN")

	asia.AddRegion(east)
	asia.AddRegion(east)
	east.AddCountry(kr)
	east.AddCountry(kr)
	kr.AddSubdivision(seoul)
	kr.AddSubdivision(seoul)
	gangnam.SetParent(seoul)
	gangnam.SetParent(seoul)

	assert.Equal(t, []*Region{east}, asia.Regions)
	assert.Equal(t, []*Country{kr}, east.Countries)
	assert.Equal(t, []*Subdivision{seoul}, kr.Subdivisions)
	assert.Equal(t, []*Subdivision{gangnam}, seoul.SubSubdivisions)
	assert.Same(t, asia, kr.Continent())
	assert.Same(t, seoul, gangnam.Parent)
}

func TestRelinkDetachesFromPreviousOwner(t *testing.T) {
	a := &Region{UNM49Code: "030"}
	b := &Region{UNM49Code: "034"}
	c := &Country{ISOTwoLetterCode: "KR"}

	a.AddCountry(c)
	b.AddCountry(c)

	assert.Empty(t, a.Countries)
	assert.Equal(t, []*Country{c}, b.Countries)
	assert.Same(t, b, c.Region)
}

func TestCountryContinent_NoRegion(t *testing.T) {
	assert.Nil(t, (&Country{}).Continent())
}

func TestDescriptorDisplayName(t *testing.T) {
	d := Descriptor{}
	d.Names.Set("en", WikipediaLabel, "Seoul")
	assert.Equal(t, "Seoul", d.DisplayName())

	d.Name = "Seoul-teukbyeolsi"
	assert.Equal(t, "Seoul-teukbyeolsi", d.DisplayName())
}

func TestEntityJSONOmitsReferences(t *testing.T) {
	lat := 36.5
	kr := &Country{ISOTwoLetterCode: "KR", Descriptor: Descriptor{Latitude: &lat, SourceURL: "/wiki/Korea"}}
	(&Region{UNM49Code: "030"}).AddCountry(kr)

	data, err := json.Marshal(kr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isoTwoLetterCountryCode":"KR","latitude":36.5}`, string(data))
}

func TestDatasetCollections(t *testing.T) {
	d := &Dataset{
		Continents:   []*Continent{{UNM49Code: "142"}},
		Countries:    []*Country{{ISOTwoLetterCode: "KR"}, {ISOTwoLetterCode: "JP"}},
		Subdivisions: []*Subdivision{NewSubdivision("KR-11")},
	}
	cols := d.Collections()
	require.Len(t, cols, 4)
	assert.Len(t, cols[0], 1)
	assert.Empty(t, cols[1])
	assert.Equal(t, "JP", cols[2][1].Key())
	assert.Equal(t, KindSubdivision, cols[3][0].Kind())
	assert.Equal(t, 4, d.Len())
	assert.False(t, d.Empty())
	assert.True(t, (&Dataset{}).Empty())
}

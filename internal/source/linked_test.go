package source

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/countries-cli/internal/model"
)

func TestPageInfoResponse_CanonicalSlug(t *testing.T) {
	var resp PageInfoResponse
	require.NoError(t, json.Unmarshal([]byte(`{"batchcomplete":true,"query":{
		"redirects":[{"from":"Korea, Republic of","to":"South Korea"}],
		"pages":[{"pageid":27019,"ns":0,"title":"South Korea","canonicalurl":"https://en.wikipedia.org/wiki/South_Korea"}]}}`), &resp))

	slug, ok := resp.CanonicalSlug()
	require.True(t, ok)
	assert.Equal(t, "South_Korea", slug)

	var missing PageInfoResponse
	require.NoError(t, json.Unmarshal([]byte(`{"query":{"pages":[{"ns":0,"title":"Nowhere","missing":true}]}}`), &missing))
	_, ok = missing.CanonicalSlug()
	assert.False(t, ok)
}

func TestEntitiesResponse_First(t *testing.T) {
	var resp EntitiesResponse
	require.NoError(t, json.Unmarshal([]byte(`{"entities":{"Q884":{
		"id":"Q884",
		"labels":{
			"ko":{"language":"ko","value":"대한민국"},
			"en":{"language":"en","value":"South Korea"},
			"de":{"language":"de","value":"Südkorea"}},
		"claims":{"P1566":[
			{"mainsnak":{"snaktype":"value","property":"P1566","datavalue":{"value":"1835841","type":"string"}}},
			{"mainsnak":{"snaktype":"value","property":"P1566","datavalue":{"value":"999","type":"string"}}}]}}}}`), &resp))

	id, e, ok := resp.First()
	require.True(t, ok)
	assert.Equal(t, "Q884", id)

	geo, ok := e.StringClaim(GeoNamesIDProperty)
	require.True(t, ok)
	assert.Equal(t, "1835841", geo)

	_, ok = e.StringClaim("P31")
	assert.False(t, ok)

	var names model.Localized
	e.ApplyLabels(&names)
	assert.Equal(t, []string{"de", "en", "ko"}, names.Languages())
	assert.Equal(t, model.Values{"South Korea"}, names.Get("en", model.WikipediaLabel))
}

func TestEntitiesResponse_Missing(t *testing.T) {
	var resp EntitiesResponse
	require.NoError(t, json.Unmarshal([]byte(`{"entities":{"-1":{"site":"enwiki","title":"Nowhere","missing":""}},"success":1}`), &resp))
	_, _, ok := resp.First()
	assert.False(t, ok)
}

func TestParseGeoNamesRDF(t *testing.T) {
	f, err := os.Open("testdata/geonames-1835841.rdf")
	require.NoError(t, err)
	defer f.Close()

	feature, err := ParseGeoNamesRDF(f)
	require.NoError(t, err)

	assert.Equal(t, "South Korea", feature.Name)
	require.NotNil(t, feature.Latitude)
	require.NotNil(t, feature.Longitude)
	assert.InDelta(t, 36.5, *feature.Latitude, 1e-9)
	assert.InDelta(t, 127.75, *feature.Longitude, 1e-9)

	assert.Equal(t, model.Values{"Republic of Korea"}, feature.Names.Get("en", model.OfficialName))
	assert.Equal(t, model.Values{"대한민국"}, feature.Names.Get("ko", model.OfficialName))
	assert.Equal(t, model.Values{"한국"}, feature.Names.Get("ko", model.AlternateName))
	assert.Equal(t, model.Values{"Korea", "South Korea"}, feature.Names.Get("en", model.AlternateName))
	assert.Equal(t, model.Values{"South Korea"}, feature.Names.Get("en", model.ShortName))
}

func TestParseGeoNamesRDF_BadCoordinateAndUnlabelledName(t *testing.T) {
	doc := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:gn="http://www.geonames.org/ontology#" xmlns:wgs84_pos="http://www.w3.org/2003/01/geo/wgs84_pos#">
<gn:Feature><gn:name>Seoul</gn:name><gn:alternateName>Hanyang</gn:alternateName>
<wgs84_pos:lat>north</wgs84_pos:lat><wgs84_pos:long>126.9784</wgs84_pos:long></gn:Feature></rdf:RDF>`

	feature, err := ParseGeoNamesRDF(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Seoul", feature.Name)
	assert.Nil(t, feature.Latitude)
	require.NotNil(t, feature.Longitude)
	assert.Empty(t, feature.Names)
}

func TestParseGeoNamesRDF_Malformed(t *testing.T) {
	_, err := ParseGeoNamesRDF(strings.NewReader(`<rdf:RDF><gn:name>`))
	require.Error(t, err)
}

func TestFeatureApply_Accumulates(t *testing.T) {
	d := &model.Descriptor{}
	d.Names.Set("en", model.WikipediaLabel, "South Korea")
	d.Names.Set("en", model.OfficialName, "Korea")

	lat, long := 36.5, 127.75
	f := &Feature{Name: "South Korea", Latitude: &lat, Longitude: &long}
	f.Names.Set("en", model.OfficialName, "Republic of Korea")

	f.Apply(d)
	assert.Equal(t, "South Korea", d.Name)
	assert.Equal(t, 36.5, *d.Latitude)
	assert.Equal(t, model.Values{"Korea", "Republic of Korea"}, d.Names.Get("en", model.OfficialName))
	assert.Equal(t, model.Values{"South Korea"}, d.Names.Get("en", model.WikipediaLabel))
}

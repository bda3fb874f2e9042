package source

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/countries-cli/internal/fetcher"
	"github.com/sells-group/countries-cli/internal/model"
)

// RDF namespaces of a GeoNames description document.
const (
	GeoNamesNS = "http://www.geonames.org/ontology#"
	WGS84NS    = "http://www.w3.org/2003/01/geo/wgs84_pos#"
	xmlNS      = "http://www.w3.org/XML/1998/namespace"
)

// Feature is what a GeoNames RDF document says about one place.
type Feature struct {
	Name      string
	Latitude  *float64
	Longitude *float64
	Names     model.Localized
}

// ParseGeoNamesRDF reads the name, the per-language official, short and
// alternate names, and the WGS84 coordinates out of an about.rdf document.
func ParseGeoNamesRDF(r io.Reader) (*Feature, error) {
	dec := fetcher.NewXMLDecoder(r)
	f := &Feature{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "source: read geonames rdf")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Space {
		case GeoNamesNS:
			switch start.Name.Local {
			case "name", model.OfficialName, model.AlternateName, model.ShortName:
			default:
				continue
			}
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, eris.Wrapf(err, "source: read gn:%s", start.Name.Local)
			}
			if start.Name.Local == "name" {
				f.Name = text
				continue
			}
			f.Names.Set(lang(start), start.Name.Local, text)

		case WGS84NS:
			if start.Name.Local != "lat" && start.Name.Local != "long" {
				continue
			}
			var text string
			if err := dec.DecodeElement(&text, &start); err != nil {
				return nil, eris.Wrapf(err, "source: read wgs84_pos:%s", start.Name.Local)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
			if err != nil {
				zap.L().Warn("geonames: bad coordinate", zap.String("field", start.Name.Local), zap.String("value", text))
				continue
			}
			if start.Name.Local == "lat" {
				f.Latitude = &v
			} else {
				f.Longitude = &v
			}
		}
	}
	return f, nil
}

func lang(start xml.StartElement) string {
	for _, a := range start.Attr {
		if a.Name.Local == "lang" && (a.Name.Space == xmlNS || a.Name.Space == "xml") {
			return a.Value
		}
	}
	return ""
}

// Apply copies the feature onto d. Localized names accumulate with whatever
// d already holds.
func (f *Feature) Apply(d *model.Descriptor) {
	if f.Name != "" {
		d.Name = f.Name
	}
	if f.Latitude != nil {
		d.Latitude = f.Latitude
	}
	if f.Longitude != nil {
		d.Longitude = f.Longitude
	}
	for _, l := range f.Names.Languages() {
		for _, key := range []string{model.OfficialName, model.AlternateName, model.ShortName} {
			for _, v := range f.Names.Get(l, key) {
				d.Names.Set(l, key, v)
			}
		}
	}
}

package source

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/sells-group/countries-cli/internal/model"
)

// GeoNamesIDProperty is the Wikidata property holding a GeoNames id.
const GeoNamesIDProperty = "P1566"

// EntitiesResponse is a wbgetentities result keyed by entity id. A title
// with no entity comes back under the id "-1".
type EntitiesResponse struct {
	Entities map[string]WikidataEntity `json:"entities"`
}

// WikidataEntity is one structured-data item.
type WikidataEntity struct {
	ID      string                     `json:"id"`
	Missing *string                    `json:"missing,omitempty"`
	Labels  map[string]WikidataLabel   `json:"labels"`
	Claims  map[string][]WikidataClaim `json:"claims"`
}

// WikidataLabel is a label in one language.
type WikidataLabel struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// WikidataClaim is a statement; only the main snak value is read.
type WikidataClaim struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// First returns the entity a title lookup resolved to. Entity ids are
// visited in sorted order so a response is always read the same way.
func (r *EntitiesResponse) First() (id string, e *WikidataEntity, ok bool) {
	ids := make([]string, 0, len(r.Entities))
	for k := range r.Entities {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	for _, k := range ids {
		ent := r.Entities[k]
		if k == "-1" || strings.HasPrefix(k, "-") || ent.Missing != nil {
			continue
		}
		return k, &ent, true
	}
	return "", nil, false
}

// StringClaim returns the first value of a string-typed property.
func (e *WikidataEntity) StringClaim(property string) (string, bool) {
	claims := e.Claims[property]
	if len(claims) == 0 {
		return "", false
	}
	var v string
	if err := json.Unmarshal(claims[0].MainSnak.DataValue.Value, &v); err != nil || v == "" {
		return "", false
	}
	return v, true
}

// ApplyLabels records every label as a Wikipedia label, in language order.
func (e *WikidataEntity) ApplyLabels(names *model.Localized) {
	langs := make([]string, 0, len(e.Labels))
	for k := range e.Labels {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	for _, k := range langs {
		l := e.Labels[k]
		lang := l.Language
		if lang == "" {
			lang = k
		}
		names.Set(lang, model.WikipediaLabel, l.Value)
	}
}

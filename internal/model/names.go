package model

import (
	"encoding/json"
	"slices"
	"sort"

	"github.com/rotisserie/eris"
)

// Localized name keys.
const (
	OfficialName   = "officialName"
	AlternateName  = "alternateName"
	ShortName      = "shortName"
	WikipediaLabel = "wikipediaLabel"
)

// Values holds one or more strings for a (language, key) pair. A single value
// is encoded as a JSON string, more than one as a JSON array.
type Values []string

// First returns the first value, or "" when empty.
func (v Values) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON implements json.Unmarshaler and accepts a string or an array.
func (v *Values) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Values{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return eris.Wrap(err, "model: decode localized values")
	}
	*v = Values(list)
	return nil
}

// Localized maps language → key → values.
type Localized map[string]map[string]Values

// Set records value under (language, key). The first value is kept as a
// scalar; later distinct values are appended in arrival order. Repeating an
// existing value is a no-op. An empty language is ignored.
func (l *Localized) Set(language, key, value string) {
	if language == "" {
		return
	}
	if *l == nil {
		*l = make(Localized)
	}
	byKey, ok := (*l)[language]
	if !ok {
		byKey = make(map[string]Values)
		(*l)[language] = byKey
	}
	if slices.Contains(byKey[key], value) {
		return
	}
	byKey[key] = append(byKey[key], value)
}

// Get returns the values recorded under (language, key).
func (l Localized) Get(language, key string) Values {
	if l == nil {
		return nil
	}
	return l[language][key]
}

// Languages returns the recorded languages in sorted order.
func (l Localized) Languages() []string {
	langs := make([]string, 0, len(l))
	for lang := range l {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Clone returns a deep copy.
func (l Localized) Clone() Localized {
	if l == nil {
		return nil
	}
	out := make(Localized, len(l))
	for lang, byKey := range l {
		m := make(map[string]Values, len(byKey))
		for k, v := range byKey {
			m[k] = slices.Clone(v)
		}
		out[lang] = m
	}
	return out
}

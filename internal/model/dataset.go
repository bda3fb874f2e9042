package model

// Dataset is the in-memory graph produced by one pipeline run or rebuilt from
// a saved snapshot.
type Dataset struct {
	Continents   []*Continent
	Regions      []*Region
	Countries    []*Country
	Subdivisions []*Subdivision
}

// Empty reports whether no collection has been populated.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Continents)+len(d.Regions)+len(d.Countries)+len(d.Subdivisions) == 0
}

// Collections returns the four collections in stage order.
func (d *Dataset) Collections() [][]Entity {
	return [][]Entity{
		entities(d.Continents),
		entities(d.Regions),
		entities(d.Countries),
		entities(d.Subdivisions),
	}
}

// Len returns the total number of entities.
func (d *Dataset) Len() int {
	return len(d.Continents) + len(d.Regions) + len(d.Countries) + len(d.Subdivisions)
}

func entities[T Entity](list []T) []Entity {
	out := make([]Entity, len(list))
	for i, e := range list {
		out[i] = e
	}
	return out
}

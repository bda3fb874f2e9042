package pipeline

import (
	"cmp"
	"slices"
	"sync"

	"github.com/sells-group/countries-cli/internal/model"
)

// Miss is an entity left partly unresolved by a stage.
type Miss struct {
	Kind       model.Kind `json:"kind"`
	Key        string     `json:"key"`
	WikidataID string     `json:"wikidataId,omitempty"`
	Reason     string     `json:"reason"`
}

// Report collects the soft misses of one run. It is safe for concurrent use.
type Report struct {
	RunID string `json:"runId"`

	mu     sync.Mutex
	misses []Miss
}

func (r *Report) add(m Miss) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses = append(r.misses, m)
}

var kindOrder = map[model.Kind]int{
	model.KindContinent:   0,
	model.KindRegion:      1,
	model.KindCountry:     2,
	model.KindSubdivision: 3,
}

// Misses returns the recorded misses ordered by collection, then key.
func (r *Report) Misses() []Miss {
	r.mu.Lock()
	out := slices.Clone(r.misses)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b Miss) int {
		if c := cmp.Compare(kindOrder[a.Kind], kindOrder[b.Kind]); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Len returns the number of misses.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.misses)
}

package ui

import (
	"sync"
)

// Patch replaces the content of one region in the browser.
type Patch struct {
	Region  string `json:"region"`
	Text    string `json:"text"`
	Version uint64 `json:"version"`
}

// PatchSink receives region updates. It must not block.
type PatchSink func(Patch)

// Region is a handle to a live output slot on the page.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Region struct {
	id string

	mu      sync.Mutex
	text    string
	version uint64
	sink    PatchSink
}

// ID returns the region identifier used in the node tree.
func (r *Region) ID() string {
	return r.id
}

// SetText replaces the region content and pushes a Patch.
func (r *Region) SetText(text string) {
	r.mu.Lock()
	r.text = text
	r.version++
	p := Patch{Region: r.id, Text: text, Version: r.version}
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		sink(p)
	}
}

// Content returns the current text and its version (0 if never written).
func (r *Region) Content() (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.version
}

// Regions is the set of regions owned by one page.
type Regions struct {
	mu   sync.RWMutex
	byID map[string]*Region
	sink PatchSink
}

// NewRegions creates an empty set whose regions push patches to sink.
// sink may be nil.
func NewRegions(sink PatchSink) *Regions {
	return &Regions{
		byID: make(map[string]*Region),
		sink: sink,
	}
}

// Bind returns the region with id, creating it if needed.
// An existing region keeps its content across renders.
func (rs *Regions) Bind(id string) *Region {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if r, ok := rs.byID[id]; ok {
		return r
	}
	r := &Region{id: id, sink: rs.sink}
	rs.byID[id] = r
	return r
}

// Lookup returns the region with id.
func (rs *Regions) Lookup(id string) (*Region, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.byID[id]
	if !ok {
		return nil, ErrUnknownRegion
	}
	return r, nil
}

// SetSink redirects patches from every region, present and future.
func (rs *Regions) SetSink(sink PatchSink) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.sink = sink
	for _, r := range rs.byID {
		r.mu.Lock()
		r.sink = sink
		r.mu.Unlock()
	}
}

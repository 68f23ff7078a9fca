// Package registry holds the fixed table of daimones: the named personas the
// council can convene. The table is populated at process start and read-only
// afterwards; the orchestrator refuses tags it does not know.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Vendor identifies which wire protocol a daimon speaks.
type Vendor string

const (
	// VendorGenerative is the generative-content protocol (parts arrays,
	// inline image data, response modalities).
	VendorGenerative Vendor = "generative"
	// VendorMessages is the messages protocol (content blocks, system field).
	VendorMessages Vendor = "messages"
)

// Daimon describes one council participant. Immutable once registered.
type Daimon struct {
	Name        string
	Vendor      Vendor
	Model       string
	Nature      string // persona text, supplied verbatim to the vendor
	DefaultVerb string
	CanRender   bool
	Color       string // display color for UI and terminal output

	// UsesFrameNumbers marks daimones that narrate in numbered frames
	// (the director); purely a display/prompting affordance.
	UsesFrameNumbers bool
}

var (
	mu      sync.RWMutex
	sealed  bool
	daimons = map[string]Daimon{}
	order   []string
)

func register(d Daimon) {
	daimons[d.Name] = d
	order = append(order, d.Name)
}

// Lookup returns the descriptor for a tag.
func Lookup(name string) (Daimon, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := daimons[name]
	return d, ok
}

// Order returns all tags in fixed display/orchestration order.
func Order() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// List returns tags in registry order, optionally filtered by vendor.
// An empty vendor returns everything.
func List(vendor Vendor) []string {
	mu.RLock()
	defer mu.RUnlock()
	var out []string
	for _, name := range order {
		if vendor == "" || daimons[name].Vendor == vendor {
			out = append(out, name)
		}
	}
	return out
}

// Sorted returns the given tags rearranged into registry order, dropping
// duplicates and unknown tags. The orchestrator iterates participants in
// this order regardless of how the client ordered its enabled set.
func Sorted(tags []string) []string {
	mu.RLock()
	defer mu.RUnlock()

	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		if _, known := rank[t]; known && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}

// Override adjusts a registered daimon before the registry is sealed.
// Empty fields leave the current value in place. Used by the optional
// daimon.yaml overlay at startup.
func Override(name, model, nature string) error {
	mu.Lock()
	defer mu.Unlock()
	if sealed {
		return fmt.Errorf("registry is sealed")
	}
	d, ok := daimons[name]
	if !ok {
		return fmt.Errorf("unknown daimon: %s", name)
	}
	if model != "" {
		d.Model = model
	}
	if nature != "" {
		d.Nature = nature
	}
	daimons[name] = d
	return nil
}

// Seal freezes the registry. Overrides after Seal fail; this runs once the
// process finishes configuration, before any turn is served.
func Seal() {
	mu.Lock()
	defer mu.Unlock()
	sealed = true
}

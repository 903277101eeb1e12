package effects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Factory constructs a fresh effect instance with default parameters.
type Factory func() Effect

// builtins is the fixed list of effects every registry starts with.
var builtins = map[string]Factory{
	"sepia":               func() Effect { return NewSepia() },
	"auto-level":          func() Effect { return NewAutoLevel() },
	"brightness-contrast": func() Effect { return NewBrightnessContrast() },
	"posterize":           func() Effect { return NewPosterize() },
	"pixelate":            func() Effect { return NewPixelate() },
	"invert-colors":       func() Effect { return NewInvertColors() },
}

// Registry maps effect identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry pre-populated with the built-in effects.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory, len(builtins))}
	for id, f := range builtins {
		r.factories[id] = f
	}
	return r
}

// Register associates an effect ID with a factory. Registering an ID twice
// is an error.
func (r *Registry) Register(id string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("effect %q already registered", id)
	}
	r.factories[id] = factory
	return nil
}

// New creates a fresh instance of the effect registered under id.
//
// Parameters:
//   - id: the effect identifier, e.g. "pixelate"
//
// Returns:
//   - the effect with its default parameters
//   - an error wrapping ErrUnknownEffect if no such effect exists
func (r *Registry) New(id string) (Effect, error) {
	r.mu.RLock()
	f, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, id)
	}
	return f(), nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Descriptor describes one effect for listings.
type Descriptor struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Icon         string         `json:"icon"`
	Category     string         `json:"category"`
	Configurable bool           `json:"configurable"`
	Defaults     map[string]any `json:"defaults,omitempty"`
}

// Describe returns a descriptor for every registered effect, ordered by ID.
func (r *Registry) Describe() []Descriptor {
	ids := r.IDs()
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		e, err := r.New(id)
		if err != nil {
			continue
		}
		d := Descriptor{
			ID:           e.ID(),
			Name:         e.Name(),
			Icon:         e.Icon(),
			Category:     e.Category(),
			Configurable: e.Configurable(),
		}
		if data := e.Data(); data != nil {
			d.Defaults = dataToMap(data)
		}
		out = append(out, d)
	}
	return out
}

// Configure decodes JSON-shaped parameters into the effect's Data and
// validates the result.
//
// Parameters:
//   - e: the effect to configure
//   - params: parameter values keyed by their JSON names; keys left out keep
//     their current value
//
// Returns:
//   - an error wrapping ErrInvalidParameter for unknown keys, wrongly typed
//     values, out-of-range values, or parameters passed to an effect that
//     takes none; the effect's parameters are unspecified after an error
//     and the instance should be discarded
func Configure(e Effect, params map[string]any) error {
	data := e.Data()
	if data == nil {
		if len(params) > 0 {
			return fmt.Errorf("%w: %s takes no parameters", ErrInvalidParameter, e.ID())
		}
		return nil
	}

	if len(params) > 0 {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(data); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidParameter, e.ID(), err)
		}
	}

	return data.Validate()
}

// dataToMap renders a Data record as a generic map using its JSON names.
func dataToMap(d Data) map[string]any {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

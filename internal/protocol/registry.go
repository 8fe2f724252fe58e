package protocol

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps protocol identifiers to codecs.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register binds a codec to a protocol identifier, replacing any previous
// binding. A single codec may serve several identifiers when amplifier
// families share a grammar.
func (r *Registry) Register(name string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[name] = c
}

// Get returns the codec registered under name.
func (r *Registry) Get(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
	return c, nil
}

// Has reports whether a codec is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.codecs[name]
	return ok
}

// Names returns the registered protocol identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultRegistry holds the built-in codecs, registered by the codec files'
// init functions.
var defaultRegistry = NewRegistry()

// Default returns the registry pre-populated with the built-in codecs.
func Default() *Registry {
	return defaultRegistry
}

package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ParseSeries decodes a single series descriptor document.
//
// Decoding is strict: unknown fields and duplicate map keys are rejected so
// descriptor typos fail at load time rather than resolving to a partial
// profile.
func ParseSeries(data []byte) (*SeriesDoc, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc SeriesDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfigValidation, err)
	}
	if doc.Series == "" {
		return nil, fmt.Errorf("%w: descriptor is missing a series identifier", ErrConfigValidation)
	}
	if doc.Protocol == "" {
		return nil, fmt.Errorf("%w: series %q declares no protocol", ErrConfigValidation, doc.Series)
	}
	if len(doc.Supported) == 0 {
		return nil, fmt.Errorf("%w: series %q lists no supported models", ErrConfigValidation, doc.Series)
	}
	return &doc, nil
}

// Library holds parsed series descriptors keyed by series identifier.
//
// Thread Safety: all methods are safe for concurrent use.
type Library struct {
	mu     sync.RWMutex
	series map[string]*SeriesDoc
}

// NewLibrary creates an empty descriptor library.
func NewLibrary() *Library {
	return &Library{series: make(map[string]*SeriesDoc)}
}

// AddFS loads every *.yaml descriptor found in dir within fsys. Descriptors
// loaded later replace earlier ones with the same series identifier, which
// lets site-local corrections shadow the embedded corpus.
func (l *Library) AddFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("%w: reading descriptor directory %q: %v", ErrConfigValidation, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("%w: reading descriptor %q: %v", ErrConfigValidation, name, err)
		}
		doc, err := ParseSeries(data)
		if err != nil {
			return fmt.Errorf("descriptor %q: %w", name, err)
		}
		l.mu.Lock()
		l.series[doc.Series] = doc
		l.mu.Unlock()
	}
	return nil
}

// Series returns the descriptor for the given series identifier.
func (l *Library) Series(id string) (*SeriesDoc, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, ok := l.series[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSeries, id)
	}
	return doc, nil
}

// SeriesIDs returns the loaded series identifiers in sorted order.
func (l *Library) SeriesIDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.series))
	for id := range l.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

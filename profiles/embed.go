// Package profiles embeds the device descriptor corpus into the binary.
//
// This allows the resolver to load amplifier capability descriptors without
// needing the YAML files present on the filesystem - they're compiled into
// the executable. Site-local descriptors can still be layered on top via
// Library.AddFS.
package profiles

import (
	"embed"

	"github.com/openav/multizone-core/internal/profile"
)

//go:embed *.yaml
var corpusFS embed.FS

// Load returns a library populated with the embedded descriptor corpus.
func Load() (*profile.Library, error) {
	lib := profile.NewLibrary()
	if err := lib.AddFS(corpusFS, "."); err != nil {
		return nil, err
	}
	return lib, nil
}

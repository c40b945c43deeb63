// Package classify decides which extracted tables are rate cards.
//
// A table is matched against named, versioned signatures. Each signature
// describes the raw header labels an extraction engine produces for one
// document template, so supporting a new template means registering a new
// signature rather than changing the matching code.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/ratecards/internal/domain/model"
)

// DefaultSignatureName is the template produced by tabula for marketplace
// SFIA rate cards.
const DefaultSignatureName = "tabula-sfia-v1"

// Signature is a structural fingerprint of a rate-card table.
type Signature struct {
	Name    string
	Version int

	// LevelColumn is the raw label of the level column.
	LevelColumn string
	// RequiredColumns must all be present, compared byte for byte.
	RequiredColumns []string
	// Marker must appear (case-insensitive substring) in at least one level cell.
	Marker string
}

// TabulaSFIA is the default signature: the engine leaves the first header
// blank and keeps the line break inside the first price header.
func TabulaSFIA() Signature {
	return Signature{
		Name:            DefaultSignatureName,
		Version:         1,
		LevelColumn:     "Unnamed: 0",
		RequiredColumns: []string{"Strategy and\rarchitecture"},
		Marker:          "follow",
	}
}

// Validate checks that the signature can match anything at all.
func (s Signature) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidSignature)
	case s.LevelColumn == "":
		return fmt.Errorf("%w: %s has no level column", ErrInvalidSignature, s.Name)
	case strings.TrimSpace(s.Marker) == "":
		return fmt.Errorf("%w: %s has no marker", ErrInvalidSignature, s.Name)
	}
	return nil
}

// Matches reports whether the table satisfies every rule of the signature:
// the level and required columns exist, no level cell is missing and at least
// one level cell contains the marker.
func (s Signature) Matches(t *model.RawTable) bool {
	level, ok := t.Column(s.LevelColumn)
	if !ok {
		return false
	}
	for _, c := range s.RequiredColumns {
		if t.ColumnIndex(c) < 0 {
			return false
		}
	}
	marker := strings.ToLower(s.Marker)
	found := false
	for _, cell := range level {
		if model.Missing(cell) {
			return false
		}
		if strings.Contains(strings.ToLower(cell), marker) {
			found = true
		}
	}
	return found
}

// Registry holds the known signatures ordered by name then version.
type Registry struct {
	signatures []Signature
}

// NewRegistry builds a registry. With no arguments it contains TabulaSFIA.
func NewRegistry(sigs ...Signature) (*Registry, error) {
	if len(sigs) == 0 {
		sigs = []Signature{TabulaSFIA()}
	}
	r := &Registry{}
	for _, s := range sigs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a signature. Name and version pairs must be unique.
func (r *Registry) Register(s Signature) error {
	if err := s.Validate(); err != nil {
		return err
	}
	for _, existing := range r.signatures {
		if existing.Name == s.Name && existing.Version == s.Version {
			return fmt.Errorf("%w: %s v%d", ErrDuplicateSignature, s.Name, s.Version)
		}
	}
	r.signatures = append(r.signatures, s)
	sort.SliceStable(r.signatures, func(i, j int) bool {
		if r.signatures[i].Name != r.signatures[j].Name {
			return r.signatures[i].Name < r.signatures[j].Name
		}
		return r.signatures[i].Version < r.signatures[j].Version
	})
	return nil
}

// Lookup returns the newest version of the named signature.
func (r *Registry) Lookup(name string) (Signature, bool) {
	var (
		best  Signature
		found bool
	)
	for _, s := range r.signatures {
		if s.Name == name && (!found || s.Version > best.Version) {
			best, found = s, true
		}
	}
	return best, found
}

// Signatures returns a copy of the registered signatures.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, len(r.signatures))
	copy(out, r.signatures)
	return out
}

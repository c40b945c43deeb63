package classify

import (
	"fmt"
	"regexp"

	"github.com/okian/ratecards/internal/domain/model"
)

// levelCellPattern spots a "<code>. Follow" style cell in any column. A
// table carrying one is almost certainly a rate card even when no signature
// accepts its headers.
var levelCellPattern = regexp.MustCompile(`(?i)^\s*[a-z0-9]\s*[.):\-]\s*follow\b`)

// IsRateCardTable reports whether the table matches the signature.
func IsRateCardTable(sig Signature, t *model.RawTable) bool {
	return sig.Matches(t)
}

// Filter splits tables into those matching the signature and the rest,
// preserving order.
func Filter(sig Signature, tables []model.RawTable) (kept, rejected []model.RawTable) {
	for i := range tables {
		if sig.Matches(&tables[i]) {
			kept = append(kept, tables[i])
		} else {
			rejected = append(rejected, tables[i])
		}
	}
	return kept, rejected
}

// Option configures a Classifier.
type Option func(*Classifier) error

// WithActive restricts matching to the named signatures (newest version of each).
func WithActive(names ...string) Option {
	return func(c *Classifier) error {
		active := make([]Signature, 0, len(names))
		for _, n := range names {
			s, ok := c.registry.Lookup(n)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownSignature, n)
			}
			active = append(active, s)
		}
		if len(active) > 0 {
			c.active = active
		}
		return nil
	}
}

// WithStrictLayouts controls whether a document whose rate-card-looking
// tables match no signature is reported as an error (default true).
func WithStrictLayouts(strict bool) Option {
	return func(c *Classifier) error {
		c.strict = strict
		return nil
	}
}

// Classifier promotes raw tables to rate-card tables.
type Classifier struct {
	registry *Registry
	active   []Signature
	strict   bool
}

// New creates a Classifier over the registry. All registered signatures are
// active unless WithActive narrows them.
func New(registry *Registry, opts ...Option) (*Classifier, error) {
	c := &Classifier{
		registry: registry,
		active:   registry.Signatures(),
		strict:   true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Classify returns the rate-card tables of one document in extraction order.
// Tables matching no signature are dropped, unless none matched at all while
// some table still carries a level cell such as "A. Follow": that is a new
// template and is reported as an UnrecognizedLayoutError.
func (c *Classifier) Classify(documentID string, tables []model.RawTable) ([]model.RateCardTable, error) {
	var out []model.RateCardTable
	suspect := -1
	for i := range tables {
		t := &tables[i]
		if sig, ok := c.match(t); ok {
			out = append(out, model.RateCardTable{RawTable: *t, Signature: sig.Name})
			continue
		}
		if suspect < 0 && looksLikeRateCard(t) {
			suspect = i
		}
	}
	if len(out) == 0 && suspect >= 0 && c.strict {
		return nil, &model.UnrecognizedLayoutError{
			DocumentID: documentID,
			Table:      tables[suspect].Index,
			Reason:     "table has SFIA level rows but matches no registered signature",
		}
	}
	return out, nil
}

func (c *Classifier) match(t *model.RawTable) (Signature, bool) {
	for _, s := range c.active {
		if s.Matches(t) {
			return s, true
		}
	}
	return Signature{}, false
}

func looksLikeRateCard(t *model.RawTable) bool {
	for _, row := range t.Rows {
		for _, cell := range row {
			if levelCellPattern.MatchString(cell) {
				return true
			}
		}
	}
	return false
}

package gold

import (
	"sort"
	"strings"
)

// Dimension maps a source document id (the rate card file stem) to its
// numeric rate card id.
type Dimension map[string]int

// ID returns the rate card id of a document.
func (d Dimension) ID(documentID string) (int, bool) {
	id, ok := d[documentID]
	return id, ok
}

// Entries returns the dimension sorted by id.
func (d Dimension) Entries() []Entry {
	out := make([]Entry, 0, len(d))
	for doc, id := range d {
		out = append(out, Entry{ID: id, RateCardFile: doc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].RateCardFile < out[j].RateCardFile
	})
	return out
}

// Entry is one dimension row.
type Entry struct {
	ID           int    `json:"id"`
	RateCardFile string `json:"rate_card_file"`
}

// BuildDimension returns a copy of existing extended with any unseen
// document ids. New ids continue after the largest existing one and are
// handed out in document id order.
func BuildDimension(existing Dimension, documentIDs []string) Dimension {
	out := make(Dimension, len(existing)+len(documentIDs))
	next := 1
	for doc, id := range existing {
		out[doc] = id
		if id >= next {
			next = id + 1
		}
	}

	fresh := make([]string, 0, len(documentIDs))
	for _, doc := range documentIDs {
		if _, ok := out[doc]; ok {
			continue
		}
		out[doc] = 0
		fresh = append(fresh, doc)
	}
	sort.Strings(fresh)
	for _, doc := range fresh {
		out[doc] = next
		next++
	}
	return out
}

// Company is the part of a document id before its first underscore.
func Company(documentID string) string {
	company, _, _ := strings.Cut(documentID, "_")
	return company
}

package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is one source rate card file.
type Document struct {
	ID   string // file stem, e.g. "acme_gcloud_2023"
	Path string
}

// DocumentID derives the id of a document from its file name: the base name
// up to the first period, so "acme_2023.v2.pdf" is "acme_2023".
func DocumentID(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// DocumentJob is the unit of work handed to a document worker.
type DocumentJob struct {
	RunID    string
	Document Document
}

// DocumentResult is what a worker reports back for one document.
type DocumentResult struct {
	DocumentID     string
	RawTables      int
	RateCardTables int
	Unmapped       []string        // cleaned headers outside the canonical schema
	Rows           []NormalizedRow // rows with location type assigned
	Err            error
	Duration       time.Duration
}

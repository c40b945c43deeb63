// Package extract turns source documents into raw tables.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/ratecards/internal/domain/dedupe"
	"github.com/okian/ratecards/internal/domain/model"
	"github.com/okian/ratecards/pkg/logger"
)

// Engine reads every table of one document.
type Engine interface {
	Extract(ctx context.Context, path string) ([]model.RawTable, error)
}

// Engine names accepted by NewEngine.
const (
	EngineAuto   = "auto"
	EngineTabula = "tabula"
	EngineHTML   = "html"
	EngineXLSX   = "xlsx"
	EngineCSV    = "csv"
)

var engineByExt = map[string]string{
	".pdf":  EngineTabula,
	".html": EngineHTML,
	".htm":  EngineHTML,
	".xlsx": EngineXLSX,
	".csv":  EngineCSV,
}

// Supported reports whether a file extension has an engine.
func Supported(path string) bool {
	_, ok := engineByExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// NewEngine builds a named engine. Auto picks one per file by extension.
func NewEngine(name, tabulaCommand string) (Engine, error) {
	switch name {
	case EngineTabula:
		return NewTabulaEngine(tabulaCommand), nil
	case EngineHTML:
		return HTMLEngine{}, nil
	case EngineXLSX:
		return XLSXEngine{}, nil
	case EngineCSV:
		return CSVEngine{}, nil
	case "", EngineAuto:
		return &autoEngine{engines: map[string]Engine{
			EngineTabula: NewTabulaEngine(tabulaCommand),
			EngineHTML:   HTMLEngine{},
			EngineXLSX:   XLSXEngine{},
			EngineCSV:    CSVEngine{},
		}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

type autoEngine struct {
	engines map[string]Engine
}

func (a *autoEngine) Extract(ctx context.Context, path string) ([]model.RawTable, error) {
	name, ok := engineByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return a.engines[name].Extract(ctx, path)
}

// Source lists the documents of an input directory and extracts their
// tables.
type Source struct {
	dir    string
	engine Engine
	seen   dedupe.Deduper
}

// NewSource creates a Source. The deduper scopes "already taken" document ids
// to one run; pass a fresh one per run.
func NewSource(dir string, engine Engine, seen dedupe.Deduper) *Source {
	if seen == nil {
		seen = dedupe.NewInMemoryDeduper()
	}
	return &Source{dir: dir, engine: engine, seen: seen}
}

// List returns the supported documents of the directory sorted by name. A
// second file with an id already listed (say acme.pdf next to acme.xlsx) is
// skipped.
func (s *Source) List(ctx context.Context) ([]model.Document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	log := logger.Get().Named("extract")
	var docs []model.Document
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !Supported(e.Name()) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		id := model.DocumentID(path)
		if s.seen.SeenAndRecord(ctx, id) {
			log.Warn(ctx, "duplicate document id skipped",
				logger.Document(id),
				logger.String("path", path))
			continue
		}
		docs = append(docs, model.Document{ID: id, Path: path})
	}
	return docs, nil
}

// Extract reads one document. Tables are stamped with the document id and
// their position. Any engine failure is returned as *model.ExtractionError.
func (s *Source) Extract(ctx context.Context, doc model.Document) ([]model.RawTable, error) {
	tables, err := s.engine.Extract(ctx, doc.Path)
	if err != nil {
		return nil, &model.ExtractionError{DocumentID: doc.ID, Path: doc.Path, Cause: err}
	}
	for i := range tables {
		tables[i].DocumentID = doc.ID
		tables[i].Index = i
	}
	return tables, nil
}

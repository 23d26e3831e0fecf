// Package datasource discovers and selects the inventory source backing the
// visualizer: a JSON snapshot exported by the hunt dashboard, or the
// dashboard's SQLite database read directly. When both exist the freshest
// valid source wins, with the database preferred on equal timestamps.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/huntmap/pkg/inventory"
)

// SourceType identifies the kind of inventory source.
type SourceType string

const (
	// SourceTypeSQLite is a hunt database (hunt.db).
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is an exported JSON snapshot.
	SourceTypeJSON SourceType = "json"
)

// Priority values when timestamps tie (higher = preferred).
const (
	prioritySQLite = 100
	priorityJSON   = 50
)

// Source is a discovered inventory source candidate.
type Source struct {
	Type     SourceType
	Path     string
	Priority int
	ModTime  time.Time
}

// Open returns an inventory.Source reading from this candidate.
func (s Source) Open() (inventory.Source, error) {
	switch s.Type {
	case SourceTypeSQLite:
		return NewSQLiteSource(s.Path)
	case SourceTypeJSON:
		return inventory.FileSource{Path: s.Path}, nil
	default:
		return nil, fmt.Errorf("datasource: unknown source type %q", s.Type)
	}
}

// Classify maps a path to a source type by extension.
func Classify(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	case ".json":
		return SourceTypeJSON, nil
	default:
		return "", fmt.Errorf("datasource: cannot classify %q (want .db or .json)", path)
	}
}

// Discover stats the given candidate paths and returns the ones that
// exist, ordered best-first: newest mtime, then priority.
func Discover(paths ...string) ([]Source, error) {
	var found []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("datasource: stat %s: %w", p, err)
		}
		typ, err := Classify(p)
		if err != nil {
			continue
		}
		prio := priorityJSON
		if typ == SourceTypeSQLite {
			prio = prioritySQLite
		}
		found = append(found, Source{Type: typ, Path: p, Priority: prio, ModTime: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].ModTime.After(found[j].ModTime)
		}
		return found[i].Priority > found[j].Priority
	})
	return found, nil
}

// Select returns the best source among the candidate paths, or an error
// naming every path when none exists.
func Select(paths ...string) (Source, error) {
	found, err := Discover(paths...)
	if err != nil {
		return Source{}, err
	}
	if len(found) == 0 {
		return Source{}, fmt.Errorf("datasource: no inventory source found (tried %s)", strings.Join(paths, ", "))
	}
	return found[0], nil
}

package syncserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sadopc/tempo/internal/model"
)

// ErrNotFound marks a date with no stored document — a legitimate empty
// result, not a failure.
var ErrNotFound = errors.New("no document for date")

// DocStore keeps one JSON document per calendar day in a flat directory,
// keyed by date. Zero-padded ISO dates make string order equal date order,
// which the range scan relies on.
type DocStore struct {
	dir string
}

// NewDocStore creates (if needed) and opens the document directory.
func NewDocStore(dir string) (*DocStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &DocStore{dir: dir}, nil
}

func (d *DocStore) path(date string) string {
	return filepath.Join(d.dir, date+".json")
}

// Put writes the document for its date, stamping the upload time.
// Unconditional overwrite: last writer wins.
func (d *DocStore) Put(doc model.DayDocument) (string, error) {
	doc.SyncedAt = time.Now().UTC()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode day document: %w", err)
	}
	key := doc.Date + ".json"
	if err := os.WriteFile(d.path(doc.Date), data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	return key, nil
}

// Get loads the document for one date, or ErrNotFound.
func (d *DocStore) Get(date string) (*model.DayDocument, error) {
	data, err := os.ReadFile(d.path(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read document for %s: %w", date, err)
	}
	var doc model.DayDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document for %s: %w", date, err)
	}
	return &doc, nil
}

// Range aggregates every stored day in [from, to]: all sessions
// concatenated, projects deduplicated by id (last loaded wins), plus the
// count of documents that loaded. A document that fails to load is skipped
// with a warning rather than failing the whole request.
func (d *DocStore) Range(from, to string) ([]model.Session, []model.Project, int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("scan data directory: %w", err)
	}

	var sessions []model.Session
	projectIndex := make(map[string]int)
	var projects []model.Project
	loaded := 0

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		date := strings.TrimSuffix(name, ".json")
		if date < from || date > to {
			continue
		}

		doc, err := d.Get(date)
		if err != nil {
			log.Warn("skipping unreadable day document", "date", date, "err", err)
			continue
		}

		sessions = append(sessions, doc.Sessions...)
		for _, p := range doc.Projects {
			if i, ok := projectIndex[p.ID]; ok {
				projects[i] = p
			} else {
				projectIndex[p.ID] = len(projects)
				projects = append(projects, p)
			}
		}
		loaded++
	}

	return sessions, projects, loaded, nil
}

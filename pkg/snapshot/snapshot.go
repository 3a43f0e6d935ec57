package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vango-dev/pebble/internal/errors"
	"github.com/vango-dev/pebble/pkg/pebble"
)

// formatVersion is the version of the Document layout.
const formatVersion = 1

// Document is the persisted form of a snapshot.
type Document struct {
	Version int                        `json:"version"`
	Manager string                     `json:"manager,omitempty"`
	SavedAt time.Time                  `json:"saved_at"`
	Cells   map[string]json.RawMessage `json:"cells"`
}

// Encode builds the document for m's current state.
func Encode(m *pebble.Manager) ([]byte, error) {
	cells, err := m.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(Document{
		Version: formatVersion,
		Manager: m.ID(),
		SavedAt: time.Now().UTC(),
		Cells:   cells,
	})
}

// Decode parses a document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("P040").Wrap(err)
	}
	if doc.Version != formatVersion {
		return nil, errors.New("P040").
			WithDetail("unsupported snapshot document version").
			WithSuggestion("re-save the snapshot with this version of pebble")
	}
	return &doc, nil
}

// Save snapshots m into store under key.
func Save(ctx context.Context, store Store, key string, m *pebble.Manager) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, key, data); err != nil {
		return errors.FromError(err, "P040")
	}
	return nil
}

// Load restores the snapshot under key into m. It fails with P041 when the
// store has no document for key.
func Load(ctx context.Context, store Store, key string, m *pebble.Manager) error {
	data, err := store.Load(ctx, key)
	if err != nil {
		return errors.FromError(err, "P040")
	}
	if data == nil {
		return errors.New("P041").WithDetail("no snapshot under key " + key)
	}
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	return m.Restore(doc.Cells)
}

// ErrNotFound matches the error Load returns for a missing key.
var ErrNotFound = errors.New("P041")

package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
)

// DefaultStorePath is where tracking data lives when nothing else is
// configured.
const DefaultStorePath = "sent_articles.json"

// Backend loads and persists tracking state. Load never fails: unreadable
// or unrecognizable data degrades to an empty store, which the backend
// logs, so one bad file cannot wedge every future run.
type Backend interface {
	Load() *Store
	Persist(store *Store) error
}

// FileBackend stores tracking state as a pretty-printed JSON document.
type FileBackend struct {
	path string
	log  logger.Logger
}

// NewFileBackend builds a file backend at the given path.
func NewFileBackend(path string, log logger.Logger) *FileBackend {
	if strings.TrimSpace(path) == "" {
		path = DefaultStorePath
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &FileBackend{path: path, log: log}
}

// Load reads the tracking file. A missing or empty file is a fresh start;
// unreadable or unrecognizable content resets the store with a warning.
// Documents in the retired map layout are migrated to the list layout.
func (b *FileBackend) Load() *Store {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.WarnObj("failed to read tracking store, starting empty", "store_load_error", map[string]any{
				"path":  b.path,
				"error": err.Error(),
			})
		}
		return NewStore()
	}

	if strings.TrimSpace(string(data)) == "" {
		return NewStore()
	}

	store, migrated, err := DecodeStore(data)
	if err != nil {
		b.log.WarnObj("unrecognized tracking store content, starting empty", "store_load_error", map[string]any{
			"path":  b.path,
			"error": err.Error(),
		})
		return NewStore()
	}
	if migrated {
		b.log.InfoObj("migrated tracking store from legacy layout", "store_migrated", map[string]any{
			"path":     b.path,
			"articles": len(store.Articles),
		})
	}
	return store
}

// Persist writes the store as pretty-printed JSON with a trailing newline.
func (b *FileBackend) Persist(store *Store) error {
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tracking store: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create tracking store directory: %w", err)
		}
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write tracking store: %w", err)
	}
	return nil
}

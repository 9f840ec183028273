package tracker

import (
	"time"

	"github.com/SASINDU20013d/newsfirst-telegram-bot/internal/logger"
)

// DefaultRetention is how long dispatched articles stay tracked.
const DefaultRetention = 7 * 24 * time.Hour

// Tracker ties a store to its backend and owns the retention policy.
type Tracker struct {
	backend   Backend
	retention time.Duration
	log       logger.Logger
	now       func() time.Time

	store *Store
}

// NewTracker builds a tracker over the given backend. A non-positive
// retention falls back to the default.
func NewTracker(backend Backend, retention time.Duration, log logger.Logger) *Tracker {
	if backend == nil {
		backend = NewFileBackend(DefaultStorePath, log)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Tracker{
		backend:   backend,
		retention: retention,
		log:       log,
		now:       time.Now,
	}
}

// Load pulls tracking state from the backend.
func (t *Tracker) Load() {
	t.store = t.backend.Load()
}

// Prune drops records older than the retention window and returns how many
// were removed. Records whose send time cannot be parsed are kept and
// logged.
func (t *Tracker) Prune() int {
	pruned, unparsable := t.ensureStore().Prune(t.retention, t.now())
	for _, rec := range unparsable {
		t.log.WarnObj("keeping record with unparsable sent_at, it will never be pruned", "store_prune_warning", map[string]any{
			"url":     rec.URL,
			"sent_at": rec.SentAt,
		})
	}
	if pruned > 0 {
		t.log.InfoObj("pruned old tracked articles", "store_pruned", map[string]any{
			"pruned":    pruned,
			"retention": t.retention.String(),
		})
	}
	return pruned
}

// Lookup reports whether the article was already dispatched.
func (t *Tracker) Lookup(url, contentHash string) (bool, string) {
	return t.ensureStore().Lookup(url, contentHash)
}

// MarkSent records a dispatched article with the current time.
func (t *Tracker) MarkSent(url, contentHash, title string) {
	t.ensureStore().Append(url, contentHash, title, t.now())
}

// Persist writes the current state through the backend, stamping the
// store's update time.
func (t *Tracker) Persist() error {
	store := t.ensureStore()
	store.UpdatedAt = FormatSentAt(t.now())
	return t.backend.Persist(store)
}

// Count returns how many articles are currently tracked.
func (t *Tracker) Count() int {
	return len(t.ensureStore().Articles)
}

func (t *Tracker) ensureStore() *Store {
	if t.store == nil {
		t.store = NewStore()
	}
	return t.store
}

package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cikgulab/cikguplanner/internal/rph"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// payloadVersion is the envelope version written to the durable slot.
const payloadVersion = 1

// Backend is the durable slot holding the serialized archive. Load
// reports ok=false when the slot has never been written.
type Backend interface {
	Load() (payload string, ok bool, err error)
	Store(payload string) error
}

// Archive is the durable collection of saved RPHs, newest first. All
// mutations synchronously rewrite the full sequence to the backend;
// there is no partial or batched write.
type Archive struct {
	mu      sync.Mutex
	items   []rph.DailyPlan
	backend Backend
}

type envelope struct {
	Version int             `json:"version"`
	Items   []rph.DailyPlan `json:"items"`
}

// Open hydrates an Archive from the backend. A corrupt or
// unknown-version payload is logged and treated as an empty archive;
// it never fails startup.
func Open(b Backend) (*Archive, error) {
	a := &Archive{backend: b}

	payload, ok, err := b.Load()
	if err != nil {
		return nil, fmt.Errorf("loading archive slot: %w", err)
	}
	if !ok || strings.TrimSpace(payload) == "" {
		return a, nil
	}

	items, err := decodePayload(payload)
	if err != nil {
		slog.Warn("archive slot unreadable, starting empty", "error", err)
		return a, nil
	}
	a.items = items
	return a, nil
}

// decodePayload accepts the versioned envelope, or a bare array for
// hand-migrated data.
func decodePayload(payload string) ([]rph.DailyPlan, error) {
	trimmed := strings.TrimSpace(payload)
	if strings.HasPrefix(trimmed, "[") {
		var items []rph.DailyPlan
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, fmt.Errorf("parsing legacy payload: %w", err)
		}
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, fmt.Errorf("parsing payload envelope: %w", err)
	}
	if env.Version != payloadVersion {
		return nil, fmt.Errorf("unknown payload version %d", env.Version)
	}
	return env.Items, nil
}

// Save assigns a fresh id and creation time to p, prepends it and
// flushes. Every save is an independent new record even when it matches
// an existing day/date/class; the in-memory state is only replaced once
// the flush succeeds.
func (a *Archive) Save(p rph.DailyPlan) (rph.DailyPlan, error) {
	if strings.TrimSpace(p.Content) == "" {
		return rph.DailyPlan{}, &rph.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if !rph.IsSchoolDay(p.Day) {
		return rph.DailyPlan{}, &rph.ValidationError{Field: "day", Reason: fmt.Sprintf("%q is not a school day", p.Day)}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()

	next := make([]rph.DailyPlan, 0, len(a.items)+1)
	next = append(next, p)
	next = append(next, a.items...)

	if err := a.flush(next); err != nil {
		return rph.DailyPlan{}, fmt.Errorf("persisting archive: %w", err)
	}
	a.items = next
	return p, nil
}

// List returns a copy of the archive, newest first.
func (a *Archive) List() []rph.DailyPlan {
	a.mu.Lock()
	defer a.mu.Unlock()

	cp := make([]rph.DailyPlan, len(a.items))
	copy(cp, a.items)
	return cp
}

// Get returns the record with the given id.
func (a *Archive) Get(id string) (rph.DailyPlan, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.items {
		if p.ID == id {
			return p, nil
		}
	}
	return rph.DailyPlan{}, ErrNotFound
}

// Delete removes the record with the given id and flushes. Deleting an
// absent id is a no-op, not an error.
func (a *Archive) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, p := range a.items {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	next := make([]rph.DailyPlan, 0, len(a.items)-1)
	next = append(next, a.items[:idx]...)
	next = append(next, a.items[idx+1:]...)

	if err := a.flush(next); err != nil {
		return fmt.Errorf("persisting archive: %w", err)
	}
	a.items = next
	return nil
}

// Len returns the number of stored records.
func (a *Archive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.items)
}

func (a *Archive) flush(items []rph.DailyPlan) error {
	if items == nil {
		items = []rph.DailyPlan{}
	}
	payload, err := json.Marshal(envelope{Version: payloadVersion, Items: items})
	if err != nil {
		return fmt.Errorf("serializing archive: %w", err)
	}
	return a.backend.Store(string(payload))
}

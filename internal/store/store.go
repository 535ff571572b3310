// Package store persists the bot's JSON documents. Every document is read
// fully and rewritten fully; Document serialises read-modify-write cycles
// inside the process.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Document names
const (
	Points            = "points"
	MeetingAttendance = "meetingAttendance"
	VoiceAttendance   = "voiceAttendance"
	MeetingStatus     = "meetingStatus"
	CodingQuestions   = "codingQuestions"
)

// ErrNotFound is returned by a Backend when a document was never written
var ErrNotFound = errors.New("store: document not found")

// Backend reads and writes raw document bodies
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Document is a typed view over one named document of a Backend
type Document[T any] struct {
	mu       sync.Mutex
	backend  Backend
	name     string
	defaults func() T
}

// NewDocument creates a document; defaults builds the value used when the
// stored body is missing or unreadable.
func NewDocument[T any](backend Backend, name string, defaults func() T) *Document[T] {
	return &Document[T]{backend: backend, name: name, defaults: defaults}
}

// Name returns the document name
func (d *Document[T]) Name() string {
	return d.name
}

// Get returns the current value of the document
func (d *Document[T]) Get(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// PutAll replaces the whole document
func (d *Document[T]) PutAll(ctx context.Context, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, v)
}

// Update loads the document, applies fn and writes the result back while
// holding the document lock. Nothing is written when fn fails.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.load(ctx)
	if err != nil {
		return v, err
	}
	if err := fn(&v); err != nil {
		return v, err
	}
	if err := d.save(ctx, v); err != nil {
		return v, err
	}
	return v, nil
}

func (d *Document[T]) load(ctx context.Context) (T, error) {
	data, err := d.backend.Read(ctx, d.name)
	if errors.Is(err, ErrNotFound) {
		return d.defaults(), nil
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read %s: %w", d.name, err)
	}

	v := d.defaults()
	if err := json.Unmarshal(data, &v); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("document", d.name).Msg("Unreadable document, starting from defaults")
		return d.defaults(), nil
	}
	return v, nil
}

func (d *Document[T]) save(ctx context.Context, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.name, err)
	}
	if err := d.backend.Write(ctx, d.name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", d.name, err)
	}
	return nil
}

// Package noteservice implements the per-user note aggregate manager.
//
// All notes of one user live in a single notebook document; every mutation
// is a read-modify-write of that whole document. Writes go through the
// store's version check and retry on conflict, so a concurrent writer can
// never silently erase another's effect.
package noteservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/store"
)

// maxRetries bounds the optimistic read-modify-write loop. Contention on a
// single notebook is per-user and short-lived; the bound only guards
// against pathological livelock.
const maxRetries = 50

// NoteInput carries the caller-settable fields of a new note. Note ids are
// assigned by the service from the notebook's counter, never by callers.
type NoteInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
}

// NotePatch carries the fields of an update; nil fields are left unchanged.
type NotePatch struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
}

// EventPublisher receives note change notifications. Kind is one of
// "created", "updated", "deleted".
type EventPublisher interface {
	PublishNoteEvent(kind, userID string, noteID int)
}

// Service is the note aggregate manager.
type Service struct {
	store  store.Store
	events EventPublisher
	now    func() time.Time
}

// NewService creates a note service. events may be nil.
func NewService(st store.Store, events EventPublisher) *Service {
	return &Service{store: st, events: events, now: time.Now}
}

// CreateNote appends a note to the user's notebook, creating the notebook
// on first use, and returns the stored note with its assigned id.
func (s *Service) CreateNote(ctx context.Context, userID string, in NoteInput) (*models.Note, error) {
	var created models.Note
	err := s.mutate(ctx, userID, true, func(nb *models.Notebook) error {
		created = models.Note{
			NoteID:      nb.NextNoteID,
			Title:       in.Title,
			Description: in.Description,
			Category:    in.Category,
			Priority:    in.Priority,
			CreatedAt:   s.now().UTC(),
		}
		nb.NextNoteID++
		nb.Notes = append(nb.Notes, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish("created", userID, created.NoteID)
	return &created, nil
}

// GetNote returns one note. A missing notebook and a missing note both
// surface as ErrNotFound; the log line tells them apart.
func (s *Service) GetNote(ctx context.Context, userID string, noteID int) (*models.Note, error) {
	nb, _, err := s.load(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		slog.Debug("note lookup: no notebook", slog.String("user_id", userID))
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	i := nb.FindNote(noteID)
	if i < 0 {
		slog.Debug("note lookup: note absent",
			slog.String("user_id", userID), slog.Int("note_id", noteID))
		return nil, apperr.ErrNotFound
	}
	note := nb.Notes[i]
	return &note, nil
}

// GetAllNotes returns the user's notes in stored order. A user without a
// notebook gets ErrNotFound; an existing empty notebook is an empty slice,
// never an error.
func (s *Service) GetAllNotes(ctx context.Context, userID string) ([]models.Note, error) {
	nb, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if nb.Notes == nil {
		return []models.Note{}, nil
	}
	out := make([]models.Note, len(nb.Notes))
	copy(out, nb.Notes)
	return out, nil
}

// UpdateNote applies patch to one note in place, preserving the order and
// content of every other note, and returns the updated note.
func (s *Service) UpdateNote(ctx context.Context, userID string, noteID int, patch NotePatch) (*models.Note, error) {
	var updated models.Note
	err := s.mutate(ctx, userID, false, func(nb *models.Notebook) error {
		i := nb.FindNote(noteID)
		if i < 0 {
			return apperr.ErrNotFound
		}
		n := &nb.Notes[i]
		if patch.Title != nil {
			n.Title = *patch.Title
		}
		if patch.Description != nil {
			n.Description = *patch.Description
		}
		if patch.Category != nil {
			n.Category = *patch.Category
		}
		if patch.Priority != nil {
			n.Priority = *patch.Priority
		}
		updated = *n
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish("updated", userID, noteID)
	return &updated, nil
}

// DeleteNote removes one note from the notebook. Deleting an absent note
// is ErrNotFound, matching the rule for reads.
func (s *Service) DeleteNote(ctx context.Context, userID string, noteID int) (bool, error) {
	err := s.mutate(ctx, userID, false, func(nb *models.Notebook) error {
		i := nb.FindNote(noteID)
		if i < 0 {
			return apperr.ErrNotFound
		}
		nb.Notes = append(nb.Notes[:i], nb.Notes[i+1:]...)
		return nil
	})
	if err != nil {
		return false, err
	}
	s.publish("deleted", userID, noteID)
	return true, nil
}

// DeleteAllNotes removes the user's notebook document entirely.
func (s *Service) DeleteAllNotes(ctx context.Context, userID string) (bool, error) {
	if err := s.store.Delete(ctx, store.BucketNotebooks, userID); err != nil {
		return false, err
	}
	s.publish("deleted", userID, 0)
	return true, nil
}

// load reads and decodes the user's notebook along with its store version.
func (s *Service) load(ctx context.Context, userID string) (*models.Notebook, int64, error) {
	doc, err := s.store.Get(ctx, store.BucketNotebooks, userID)
	if err != nil {
		return nil, 0, err
	}
	var nb models.Notebook
	if err := json.Unmarshal(doc.Data, &nb); err != nil {
		return nil, 0, fmt.Errorf("decode notebook %s: %w", userID, err)
	}
	return &nb, doc.Version, nil
}

// mutate runs the optimistic read-modify-write cycle: load the notebook,
// apply fn, write it back under the captured version, and start over when
// a concurrent writer got there first. createIfAbsent controls whether a
// missing notebook is materialized or surfaced as ErrNotFound.
func (s *Service) mutate(ctx context.Context, userID string, createIfAbsent bool, fn func(*models.Notebook) error) error {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Back off a little so competing writers interleave.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Millisecond):
			}
		}
		nb, version, err := s.load(ctx, userID)
		fresh := false
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			if !createIfAbsent {
				return apperr.ErrNotFound
			}
			nb = &models.Notebook{UserID: userID, NextNoteID: 1}
			fresh = true
		case err != nil:
			return err
		}

		if err := fn(nb); err != nil {
			return err
		}
		data, err := json.Marshal(nb)
		if err != nil {
			return fmt.Errorf("encode notebook %s: %w", userID, err)
		}

		if fresh {
			err = s.store.Insert(ctx, store.BucketNotebooks, userID, data)
			// Another request created the notebook first; redo on top of it.
			if errors.Is(err, apperr.ErrAlreadyExists) {
				continue
			}
		} else {
			err = s.store.Replace(ctx, store.BucketNotebooks, userID, data, version)
			if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrNotFound) {
				continue
			}
		}
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: notebook %s: retries exhausted", apperr.ErrConflict, userID)
}

func (s *Service) publish(kind, userID string, noteID int) {
	if s.events != nil {
		s.events.PublishNoteEvent(kind, userID, noteID)
	}
}

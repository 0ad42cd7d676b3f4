// Package reminderservice implements keyed CRUD for reminders.
package reminderservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/store"
)

// Service manages reminder records.
type Service struct {
	store store.Store
}

// NewService creates a reminder service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create stores a new reminder. An empty id gets a generated one.
func (s *Service) Create(ctx context.Context, r models.Reminder) (*models.Reminder, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode reminder: %w", err)
	}
	if err := s.store.Insert(ctx, store.BucketReminders, r.ID, data); err != nil {
		return nil, err
	}
	return &r, nil
}

// Get returns the reminder with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.Reminder, error) {
	doc, err := s.store.Get(ctx, store.BucketReminders, id)
	if err != nil {
		return nil, err
	}
	var r models.Reminder
	if err := json.Unmarshal(doc.Data, &r); err != nil {
		return nil, fmt.Errorf("decode reminder %s: %w", id, err)
	}
	return &r, nil
}

// Update replaces the stored reminder under its current version.
func (s *Service) Update(ctx context.Context, id string, r models.Reminder) (*models.Reminder, error) {
	doc, err := s.store.Get(ctx, store.BucketReminders, id)
	if err != nil {
		return nil, err
	}
	var existing models.Reminder
	if err := json.Unmarshal(doc.Data, &existing); err != nil {
		return nil, fmt.Errorf("decode reminder %s: %w", id, err)
	}

	r.ID = id
	r.CreatedBy = existing.CreatedBy
	r.CreatedAt = existing.CreatedAt
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode reminder: %w", err)
	}
	if err := s.store.Replace(ctx, store.BucketReminders, id, data, doc.Version); err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete removes the reminder with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.BucketReminders, id)
}

// Package categoryservice implements keyed CRUD for note categories.
package categoryservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/store"
)

// Service manages category records. Categories are independent keyed
// records with no invariants beyond id uniqueness.
type Service struct {
	store store.Store
}

// NewService creates a category service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Create stores a new category. An empty id gets a generated one.
func (s *Service) Create(ctx context.Context, c models.Category) (*models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode category: %w", err)
	}
	if err := s.store.Insert(ctx, store.BucketCategories, c.ID, data); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the category with the given id.
func (s *Service) Get(ctx context.Context, id string) (*models.Category, error) {
	doc, err := s.store.Get(ctx, store.BucketCategories, id)
	if err != nil {
		return nil, err
	}
	var c models.Category
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", id, err)
	}
	return &c, nil
}

// Update replaces the stored category under its current version.
func (s *Service) Update(ctx context.Context, id string, c models.Category) (*models.Category, error) {
	doc, err := s.store.Get(ctx, store.BucketCategories, id)
	if err != nil {
		return nil, err
	}
	var existing models.Category
	if err := json.Unmarshal(doc.Data, &existing); err != nil {
		return nil, fmt.Errorf("decode category %s: %w", id, err)
	}

	c.ID = id
	c.CreatedBy = existing.CreatedBy
	c.CreatedAt = existing.CreatedAt
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode category: %w", err)
	}
	if err := s.store.Replace(ctx, store.BucketCategories, id, data, doc.Version); err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the category with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, store.BucketCategories, id)
}

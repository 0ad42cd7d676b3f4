// Package auth implements credential verification, token issuance and
// user registration for keepnote.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/store"
)

// dummyHash is compared against on the unknown-user path so that a failed
// login costs the same whether the id or the secret was wrong.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service is the authentication entry point: it owns registration and
// login, composing the credential check with token issuance.
type Service struct {
	store  store.Store
	issuer *Issuer
}

// NewService creates an authentication service.
func NewService(st store.Store, issuer *Issuer) *Service {
	return &Service{store: st, issuer: issuer}
}

// Register stores a new identity. The presented secret is bcrypt-hashed
// before it reaches the store; the returned copy carries no secret at all.
func (s *Service) Register(ctx context.Context, user models.User) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Insert(ctx, store.BucketUsers, user.UserID, data); err != nil {
		return nil, err
	}

	stored := user
	stored.Password = ""
	return &stored, nil
}

// Login validates the userId/password pair and mints a token. Unknown id
// and wrong secret collapse into the one outward ErrUnauthorized so the
// response never reveals which half of the pair failed.
func (s *Service) Login(ctx context.Context, userID, password string) (string, error) {
	user, err := s.verify(ctx, userID, password)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidCredentials) {
		return "", apperr.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	return s.issuer.Issue(*user)
}

// Introspect verifies a bearer token previously issued by Login.
func (s *Service) Introspect(token string) (*TokenClaims, error) {
	return s.issuer.Introspect(token)
}

// GetUser returns the stored identity without its secret.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.store.Get(ctx, store.BucketUsers, userID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(doc.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	user.Password = ""
	return &user, nil
}

// UpdateUser replaces the mutable profile fields of an identity. A non-empty
// password is re-hashed; an empty one keeps the stored hash. The id and
// creation time never change.
func (s *Service) UpdateUser(ctx context.Context, userID string, upd models.User) (*models.User, error) {
	doc, err := s.store.Get(ctx, store.BucketUsers, userID)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(doc.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}

	if upd.Role != "" {
		user.Role = upd.Role
	}
	if upd.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Replace(ctx, store.BucketUsers, userID, data, doc.Version); err != nil {
		return nil, err
	}

	user.Password = ""
	return &user, nil
}

// DeleteUser removes the identity record. Tokens already issued for it stay
// valid until they expire; there is no revocation list.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, store.BucketUsers, userID)
}

// verify confirms the presented secret matches the stored hash for userID.
// No side effects.
func (s *Service) verify(ctx context.Context, userID, password string) (*models.User, error) {
	doc, err := s.store.Get(ctx, store.BucketUsers, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		// Burn a comparison anyway to keep timing flat.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(doc.Data, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", userID, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	user.Password = ""
	return &user, nil
}

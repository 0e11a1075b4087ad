package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/caching"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

// DefaultSessionTTL bounds how long a stale role or institute binding
// can survive after a directory update.
const DefaultSessionTTL = 5 * time.Minute

// SessionService resolves an authenticated identity to its role and
// institute binding. Resolution fails closed: any directory error or
// missing record yields no session, never a guessed role.
type SessionService interface {
	Resolve(ctx context.Context, identityID uuid.UUID) (*models.Session, error)
	Purge(ctx context.Context, identityID uuid.UUID) error
}

type sessionService struct {
	userRepo repositories.UserRepository
	cacheSvc caching.CacheService
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService builds the resolver. A nil clock defaults to
// time.Now; tests inject a fixed one.
func NewSessionService(userRepo repositories.UserRepository, cacheSvc caching.CacheService, ttl time.Duration, now func() time.Time) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &sessionService{
		userRepo: userRepo,
		cacheSvc: cacheSvc,
		ttl:      ttl,
		now:      now,
	}
}

func (s *sessionService) Resolve(ctx context.Context, identityID uuid.UUID) (*models.Session, error) {
	if cached, err := s.cacheSvc.GetSession(ctx, identityID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache trouble is not an authorization decision; fall through
		// to the directory.
		log.Printf("WARN: session cache read failed for %s: %v", identityID, err)
	}

	user, err := s.userRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryLookup, err)
	}

	if !user.IsActive {
		// Drop any cached copy so a disabled account cannot ride out
		// the remainder of its TTL.
		if delErr := s.cacheSvc.DeleteSession(ctx, identityID); delErr != nil {
			log.Printf("WARN: session cache purge failed for %s: %v", identityID, delErr)
		}
		return nil, ErrAccountDisabled
	}

	session := &models.Session{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		InstituteID: user.InstituteID,
		ResolvedAt:  s.now(),
	}

	if err := s.cacheSvc.SetSession(ctx, identityID, session, s.ttl); err != nil {
		log.Printf("WARN: session cache write failed for %s: %v", identityID, err)
	}

	return session, nil
}

// Purge drops the cached session so the next request re-reads the
// directory. Called on sign-out and after role or binding changes.
func (s *sessionService) Purge(ctx context.Context, identityID uuid.UUID) error {
	return s.cacheSvc.DeleteSession(ctx, identityID)
}

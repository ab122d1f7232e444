// Package settings owns the canonical highlighter state: user identifier,
// enabled flag, raw keyword text and the derived keyword list. It is the only
// writer of persisted state; every other context reaches it through RPC.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/storage"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

type Service struct {
	store  storage.Store
	logger logging.Logger
	newID  func() string

	// collapses concurrent first reads so only one id is generated and stored
	userID singleflight.Group
}

func NewService(store storage.Store, l logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: l.With("module", "settings"),
		newID:  uuid.NewString,
	}
}

func (s *Service) get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Service) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Set(ctx, key, raw)
}

// userIDTimeout bounds the shared first-use read-and-store, which no single
// caller's context owns.
const userIDTimeout = 10 * time.Second

// GetUserID returns the persisted user identifier, generating and storing a
// random UUID-v4 on first use. Concurrent callers share one lookup; each
// stops waiting when its own ctx is done without failing the others.
func (s *Service) GetUserID(ctx context.Context) (string, error) {
	ch := s.userID.DoChan(common.KeyUserID, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), userIDTimeout)
		defer cancel()
		return s.loadOrCreateUserID(ctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (s *Service) loadOrCreateUserID(ctx context.Context) (string, error) {
	var id string
	ok, err := s.get(ctx, common.KeyUserID, &id)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = s.newID()
	if err := s.set(ctx, common.KeyUserID, id); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "generated user id", "user_id", id)
	return id, nil
}

// GetEnabled reports whether highlighting is on. Only an explicit stored
// false turns it off; an absent or unreadable value means enabled.
func (s *Service) GetEnabled(ctx context.Context) (bool, error) {
	raw, err := s.store.Get(ctx, common.KeyIsActive)
	if err != nil {
		return false, err
	}
	var enabled bool
	if raw != nil && json.Unmarshal(raw, &enabled) == nil && !enabled {
		return false, nil
	}
	return true, nil
}

func (s *Service) SetEnabled(ctx context.Context, enabled bool) error {
	return s.set(ctx, common.KeyIsActive, enabled)
}

func (s *Service) GetKeywordsRaw(ctx context.Context) (string, error) {
	var raw string
	if _, err := s.get(ctx, common.KeyKeywordsString, &raw); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *Service) GetKeywordsList(ctx context.Context) ([]string, error) {
	var list []string
	if _, err := s.get(ctx, common.KeyKeywordsArray, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

// SetKeywordsRaw stores the raw text and then the derived list. The writes
// are independent: if the second fails the two keys disagree until the next
// successful call, and the error says so.
func (s *Service) SetKeywordsRaw(ctx context.Context, raw string) error {
	if err := s.set(ctx, common.KeyKeywordsString, raw); err != nil {
		return err
	}
	if err := s.set(ctx, common.KeyKeywordsArray, DeriveKeywords(raw)); err != nil {
		s.logger.Warn(ctx, "keywords list out of sync with raw text", "error", err)
		return fmt.Errorf("keywords list not updated: %w", err)
	}
	return nil
}

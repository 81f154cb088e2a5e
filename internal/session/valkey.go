// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"qrforge/internal/models"
)

// historyKeyPrefix namespaces history lists in Valkey.
const historyKeyPrefix = "history:"

// ValkeyStore keeps each session's history as a Valkey list of JSON
// artifacts. The list is trimmed to the capacity on every append and expires
// with the session TTL.
type ValkeyStore struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
}

// NewValkeyStore creates a history store backed by the given Valkey client.
func NewValkeyStore(client *redis.Client, capacity int, ttl time.Duration) *ValkeyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity < 0 {
		capacity = 0
	}
	return &ValkeyStore{client: client, capacity: capacity, ttl: ttl}
}

// Append pushes a onto the session's list, trims it and refreshes the TTL in
// one transaction.
func (s *ValkeyStore) Append(ctx context.Context, sessionID string, a *models.Artifact) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("history marshal: %w", err)
	}

	key := historyKeyPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if s.capacity > 0 {
		pipe.LTrim(ctx, key, int64(-s.capacity), -1)
	}
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history append: %w", err)
	}
	return nil
}

// List returns the session's entries, oldest first.
func (s *ValkeyStore) List(ctx context.Context, sessionID string) ([]*models.Artifact, error) {
	raw, err := s.client.LRange(ctx, historyKeyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("history list: %w", err)
	}

	out := make([]*models.Artifact, 0, len(raw))
	for _, item := range raw {
		var a models.Artifact
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("history unmarshal: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}

// Get returns one artifact from the session's list, or nil.
func (s *ValkeyStore) Get(ctx context.Context, sessionID string, id uuid.UUID) (*models.Artifact, error) {
	entries, err := s.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, a := range entries {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

// Clear deletes the session's list.
func (s *ValkeyStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, historyKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("history clear: %w", err)
	}
	return nil
}

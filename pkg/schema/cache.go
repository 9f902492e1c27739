// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package schema caches the filtered field list of each sObject type.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/teradata-labs/salesforce-mcp/pkg/observability"
	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Field is the part of a describe field descriptor that is kept.
type Field struct {
	Label          string            `json:"label"`
	Name           string            `json:"name"`
	Updateable     bool              `json:"updateable"`
	Type           string            `json:"type"`
	Length         int               `json:"length"`
	PicklistValues []json.RawMessage `json:"picklistValues"`
}

// SessionSource hands out the current upstream session.
type SessionSource interface {
	Session() (salesforce.Session, error)
}

// Cache maps object type names to their field lists. Entries are never
// evicted or refreshed; concurrent misses on one name share a single
// describe call.
type Cache struct {
	sessions SessionSource
	logger   *zap.Logger
	metrics  *observability.Metrics

	mu      sync.RWMutex
	entries map[string][]Field
	flight  singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics records hits and misses.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// NewCache creates an empty cache reading through sessions.
func NewCache(sessions SessionSource, opts ...Option) *Cache {
	c := &Cache{
		sessions: sessions,
		logger:   zap.NewNop(),
		entries:  make(map[string][]Field),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetFields returns the field list of objectType, describing it upstream on
// the first request only. It fails when no session is established.
func (c *Cache) GetFields(ctx context.Context, objectType string) ([]Field, error) {
	sess, err := c.sessions.Session()
	if err != nil {
		return nil, err
	}

	if fields, ok := c.lookup(objectType); ok {
		c.metrics.SchemaCacheHit()
		return slices.Clone(fields), nil
	}

	// The describe is shared by every waiter on objectType, so one caller
	// going away must not cancel it for the rest.
	shared := context.WithoutCancel(ctx)
	v, err, joined := c.flight.Do(objectType, func() (interface{}, error) {
		if fields, ok := c.lookup(objectType); ok {
			return fields, nil
		}

		c.metrics.SchemaCacheMiss()
		raw, err := sess.Object(objectType).Describe(shared)
		if err != nil {
			return nil, err
		}
		fields, err := filterFields(raw)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", objectType, err)
		}

		c.mu.Lock()
		c.entries[objectType] = fields
		c.mu.Unlock()

		c.logger.Debug("Cached object fields",
			zap.String("object", objectType),
			zap.Int("fields", len(fields)))
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	if joined {
		c.logger.Debug("Shared in-flight describe", zap.String("object", objectType))
	}
	return slices.Clone(v.([]Field)), nil
}

func (c *Cache) lookup(objectType string) ([]Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fields, ok := c.entries[objectType]
	return fields, ok
}

// Has reports whether objectType is cached.
func (c *Cache) Has(objectType string) bool {
	_, ok := c.lookup(objectType)
	return ok
}

// Len returns the number of cached object types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type describeResult struct {
	Fields []Field `json:"fields"`
}

// filterFields keeps the six retained attributes of every field descriptor.
// Unknown members of the describe payload are dropped by decoding.
func filterFields(raw json.RawMessage) ([]Field, error) {
	var d describeResult
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode describe result: %w", err)
	}
	fields := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.PicklistValues == nil {
			f.PicklistValues = []json.RawMessage{}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

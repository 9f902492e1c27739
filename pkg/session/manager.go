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

// Package session owns the single upstream Salesforce session of the process.
//
// The session is established once at startup. After a failed attempt the
// manager stays permanently not-ready and every accessor reports
// ErrConnectionNotEstablished; there is no reconnect path.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/teradata-labs/salesforce-mcp/pkg/salesforce"
	"go.uber.org/zap"
)

var (
	// ErrConnectionNotEstablished is returned by every accessor while no
	// session is available.
	ErrConnectionNotEstablished = errors.New("Salesforce connection not established")

	// ErrAlreadyEstablished is returned when Establish is called twice.
	ErrAlreadyEstablished = errors.New("session establishment already attempted")
)

// Manager is the only holder of the upstream session.
type Manager struct {
	connector salesforce.Connector
	logger    *zap.Logger

	mu          sync.RWMutex
	attempted   bool
	session     salesforce.Session
	mode        salesforce.Mode
	failure     error
	establishAt time.Time
}

// NewManager creates a Manager that will connect through connector.
func NewManager(connector salesforce.Connector, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{connector: connector, logger: logger}
}

// Establish connects once. Credentials are selected by precedence: the
// access token and instance URL pair when both are present, otherwise
// username, password and security token.
func (m *Manager) Establish(ctx context.Context, creds salesforce.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempted {
		return ErrAlreadyEstablished
	}
	m.attempted = true

	mode, err := creds.Mode()
	if err != nil {
		m.failure = err
		m.logger.Error("Salesforce credentials incomplete", zap.Error(err))
		return fmt.Errorf("establish session: %w", err)
	}
	m.mode = mode

	sess, err := m.connector.Connect(ctx, creds)
	if err != nil {
		m.failure = err
		m.logger.Error("Failed to establish Salesforce session",
			zap.String("mode", string(mode)),
			zap.Error(err))
		return fmt.Errorf("establish session: %w", err)
	}

	m.session = sess
	m.establishAt = time.Now()
	m.logger.Info("Salesforce session established",
		zap.String("mode", string(mode)),
		zap.String("instance_url", sess.InstanceURL()))
	return nil
}

// IsReady reports whether a session is available.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

// Session returns the live session or ErrConnectionNotEstablished. Callers
// must not keep the returned value beyond the current request.
func (m *Manager) Session() (salesforce.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, ErrConnectionNotEstablished
	}
	return m.session, nil
}

// FailureReason returns the error recorded by a failed Establish, or nil.
func (m *Manager) FailureReason() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failure
}

// Mode returns the credential mode selected by Establish, empty before it runs
// or when credentials were incomplete.
func (m *Manager) Mode() salesforce.Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// EstablishedAt returns when the session became ready.
func (m *Manager) EstablishedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.establishAt
}

/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package store

import (
	"sync"

	"github.com/asgardeo/consent/internal/oauth/consent/model"
)

// approvalKey identifies the current approval record for a (user, client, scope) triple.
type approvalKey struct {
	userID   string
	clientID string
	scope    string
}

// InMemoryApprovalStore implements the ApprovalStoreInterface with an in-process map.
// Safe for concurrent use by independent authorization flows.
type InMemoryApprovalStore struct {
	approvals map[approvalKey]model.Approval
	mu        sync.RWMutex
}

// NewInMemoryApprovalStore creates a new instance of InMemoryApprovalStore.
func NewInMemoryApprovalStore() *InMemoryApprovalStore {
	return &InMemoryApprovalStore{
		approvals: make(map[approvalKey]model.Approval),
	}
}

// AddApprovals stores the given records, superseding prior records with the same key.
// The whole batch is applied under one lock hold; within a batch, last write wins.
func (s *InMemoryApprovalStore) AddApprovals(approvals []model.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, approval := range approvals {
		key := approvalKey{
			userID:   approval.UserID,
			clientID: approval.ClientID,
			scope:    approval.Scope,
		}
		s.approvals[key] = approval
	}

	return nil
}

// GetApprovals returns every currently stored approval for the (user, client) pair,
// regardless of status or expiry.
func (s *InMemoryApprovalStore) GetApprovals(userID, clientID string) ([]model.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var approvals []model.Approval
	for key, approval := range s.approvals {
		if key.userID == userID && key.clientID == clientID {
			approvals = append(approvals, approval)
		}
	}

	return approvals, nil
}

// RevokeApprovals removes the current record for each given record's key.
func (s *InMemoryApprovalStore) RevokeApprovals(approvals []model.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, approval := range approvals {
		key := approvalKey{
			userID:   approval.UserID,
			clientID: approval.ClientID,
			scope:    approval.Scope,
		}
		delete(s.approvals, key)
	}

	return nil
}

// ClearApprovals removes all stored approval records.
// This should only be used in tests to reset store state.
func (s *InMemoryApprovalStore) ClearApprovals() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.approvals = make(map[approvalKey]model.Approval)
}

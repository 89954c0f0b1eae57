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

// Package model defines the data structures for OAuth2 user approval handling.
package model

import "time"

// ApprovalStatus represents the decision recorded for a single scope.
type ApprovalStatus string

const (
	// ApprovalStatusApproved denotes a scope the resource owner approved.
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	// ApprovalStatusDenied denotes a scope the resource owner denied.
	ApprovalStatusDenied ApprovalStatus = "DENIED"
)

// Approval represents a persisted approval decision for a (user, client, scope) key.
// Records are never mutated in place; a newer write for the same key supersedes the older one.
type Approval struct {
	UserID     string
	ClientID   string
	Scope      string
	ExpiryTime time.Time
	Status     ApprovalStatus
}

// IsActivelyApproved reports whether the record grants the scope at the given instant.
// A record counts only when its status is APPROVED and its expiry is strictly after now;
// a record expiring exactly at now is treated as expired.
func (a *Approval) IsActivelyApproved(now time.Time) bool {
	return a.Status == ApprovalStatusApproved && a.ExpiryTime.After(now)
}

// AuthorizationRequest represents an in-flight authorization attempt.
// It is owned by a single authorization flow and carries no internal synchronization.
type AuthorizationRequest struct {
	ClientID string
	// RequestedScopes holds the scopes the client asked for, in request order.
	RequestedScopes []string
	// ApprovalParameters maps a scope-qualified key such as "scope.read" to the
	// decision token submitted by the resource owner. A missing key means the
	// scope was not explicitly decided.
	ApprovalParameters map[string]string
	// ApprovedScopes is populated by the approval handler with the subset of
	// RequestedScopes that ended up approved, preserving request order.
	ApprovedScopes []string
	// Approved is the terminal verdict for the request as a whole.
	Approved bool
}

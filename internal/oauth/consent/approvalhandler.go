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

// Package consent provides the approval resolution logic for OAuth2 authorization requests.
// It reconciles freshly submitted per-scope decisions and previously persisted approval
// records into a single verdict per requested scope.
package consent

import (
	"strings"
	"time"

	"github.com/asgardeo/consent/internal/oauth/consent/constants"
	"github.com/asgardeo/consent/internal/oauth/consent/model"
	"github.com/asgardeo/consent/internal/oauth/consent/store"
	"github.com/asgardeo/consent/internal/system/config"
	"github.com/asgardeo/consent/internal/system/log"
)

const loggerComponentName = "UserApprovalHandler"

// UserApprovalHandlerInterface defines the contract for resolving user approval
// of an authorization request.
type UserApprovalHandlerInterface interface {
	// CheckForPreApproval decides, with no fresh user input, whether the request can
	// be approved from still-valid approval history. Read-only on the store; the
	// request is marked approved only when every requested scope is covered.
	CheckForPreApproval(request *model.AuthorizationRequest, userID string) (*model.AuthorizationRequest, error)
	// IsApproved resolves the request from the submitted approval parameters,
	// persists one decision record per requested scope, and updates the request's
	// approved scope set and verdict. Returns the overall verdict.
	IsApproved(request *model.AuthorizationRequest, userID string) (bool, error)
}

// UserApprovalHandler is the implementation of UserApprovalHandlerInterface.
type UserApprovalHandler struct {
	ApprovalStore store.ApprovalStoreInterface
}

// NewUserApprovalHandler creates a new instance of UserApprovalHandler backed by
// the given approval store.
func NewUserApprovalHandler(approvalStore store.ApprovalStoreInterface) UserApprovalHandlerInterface {
	return &UserApprovalHandler{
		ApprovalStore: approvalStore,
	}
}

// IsApproved resolves the authorization request from the submitted approval parameters.
//
// Every requested scope receives exactly one verdict: a scope is approved when the
// parameter "scope.<name>" carries the value "approved" (case-insensitive), and denied
// for any other value or when the parameter is absent. A scope the user did not
// explicitly approve is denied, not skipped. All decision records are persisted as one
// batch before the request is mutated, so a storage failure leaves the request untouched.
func (h *UserApprovalHandler) IsApproved(request *model.AuthorizationRequest, userID string) (bool, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyClientID, request.ClientID))

	requestedScopes := deduplicateScopes(request.RequestedScopes)
	expiryTime := time.Now().Add(approvalValidityPeriod())

	approvals := make([]model.Approval, 0, len(requestedScopes))
	approvedScopes := make([]string, 0, len(requestedScopes))
	for _, scope := range requestedScopes {
		status := model.ApprovalStatusDenied
		value := request.ApprovalParameters[constants.ScopeParameterPrefix+scope]
		if strings.EqualFold(value, constants.ApprovalParameterValueApproved) {
			status = model.ApprovalStatusApproved
			approvedScopes = append(approvedScopes, scope)
		}

		approvals = append(approvals, model.Approval{
			UserID:     userID,
			ClientID:   request.ClientID,
			Scope:      scope,
			ExpiryTime: expiryTime,
			Status:     status,
		})
	}

	if err := h.ApprovalStore.AddApprovals(approvals); err != nil {
		logger.Error("Failed to persist approval decisions", log.Error(err))
		return false, err
	}

	request.ApprovedScopes = approvedScopes
	request.Approved = len(approvedScopes) == len(requestedScopes)

	logger.Debug("Resolved authorization request",
		log.Int("requestedScopes", len(requestedScopes)),
		log.Int("approvedScopes", len(approvedScopes)),
		log.Bool("approved", request.Approved))

	return request.Approved, nil
}

// CheckForPreApproval checks whether every requested scope is covered by a stored,
// unexpired approval for the (user, client) pair and, if so, marks the request
// approved without user interaction. The store is never mutated on this path; when
// any scope is not covered the request is left untouched so the caller falls through
// to collecting fresh user input.
func (h *UserApprovalHandler) CheckForPreApproval(request *model.AuthorizationRequest,
	userID string) (*model.AuthorizationRequest, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String(log.LoggerKeyClientID, request.ClientID))

	requestedScopes := deduplicateScopes(request.RequestedScopes)
	if len(requestedScopes) == 0 {
		request.ApprovedScopes = []string{}
		request.Approved = true
		return request, nil
	}

	approvals, err := h.ApprovalStore.GetApprovals(userID, request.ClientID)
	if err != nil {
		logger.Error("Failed to retrieve stored approvals", log.Error(err))
		return request, err
	}

	// Index the current record per scope. If the store surfaces more than one
	// record for a scope, the one with the latest expiry is taken as current.
	currentApprovals := make(map[string]model.Approval, len(approvals))
	for _, approval := range approvals {
		existing, ok := currentApprovals[approval.Scope]
		if !ok || approval.ExpiryTime.After(existing.ExpiryTime) {
			currentApprovals[approval.Scope] = approval
		}
	}

	now := time.Now()
	for _, scope := range requestedScopes {
		approval, ok := currentApprovals[scope]
		if !ok || !approval.IsActivelyApproved(now) {
			logger.Debug("Scope not covered by approval history", log.String("scope", scope))
			return request, nil
		}
	}

	request.ApprovedScopes = append([]string(nil), requestedScopes...)
	request.Approved = true

	logger.Debug("Authorization request pre-approved from history",
		log.Int("requestedScopes", len(requestedScopes)))

	return request, nil
}

// approvalValidityPeriod returns the configured lifetime of a persisted approval
// decision, falling back to the default when not configured.
func approvalValidityPeriod() time.Duration {
	validityPeriod := config.GetConsentRuntime().Config.OAuth.Approval.ValidityPeriod
	if validityPeriod <= 0 {
		validityPeriod = constants.DefaultApprovalValidityPeriod
	}
	return time.Duration(validityPeriod) * time.Second
}

// deduplicateScopes returns the distinct scopes preserving first-occurrence order.
func deduplicateScopes(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	deduplicated := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}
		deduplicated = append(deduplicated, scope)
	}
	return deduplicated
}

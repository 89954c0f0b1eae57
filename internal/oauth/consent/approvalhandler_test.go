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

package consent

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/asgardeo/consent/internal/oauth/consent/model"
	"github.com/asgardeo/consent/internal/oauth/consent/store"
	"github.com/asgardeo/consent/internal/system/config"
)

// failingApprovalStore is a stub store whose operations always fail.
type failingApprovalStore struct{}

func (s *failingApprovalStore) AddApprovals(approvals []model.Approval) error {
	return errors.New("storage unavailable")
}

func (s *failingApprovalStore) GetApprovals(userID, clientID string) ([]model.Approval, error) {
	return nil, errors.New("storage unavailable")
}

func (s *failingApprovalStore) RevokeApprovals(approvals []model.Approval) error {
	return errors.New("storage unavailable")
}

// fixedApprovalStore is a stub store returning a fixed set of records.
type fixedApprovalStore struct {
	approvals []model.Approval
}

func (s *fixedApprovalStore) AddApprovals(approvals []model.Approval) error {
	return nil
}

func (s *fixedApprovalStore) GetApprovals(userID, clientID string) ([]model.Approval, error) {
	return s.approvals, nil
}

func (s *fixedApprovalStore) RevokeApprovals(approvals []model.Approval) error {
	return nil
}

type UserApprovalHandlerTestSuite struct {
	suite.Suite
	store   *store.InMemoryApprovalStore
	handler UserApprovalHandlerInterface
}

func TestUserApprovalHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserApprovalHandlerTestSuite))
}

func (suite *UserApprovalHandlerTestSuite) SetupTest() {
	config.ResetConsentRuntime()
	testConfig := &config.Config{
		OAuth: config.OAuthConfig{
			Approval: config.ApprovalConfig{
				ValidityPeriod: 3600,
			},
		},
	}
	_ = config.InitializeConsentRuntime("test", testConfig)

	suite.store = store.NewInMemoryApprovalStore()
	suite.handler = NewUserApprovalHandler(suite.store)
}

func (suite *UserApprovalHandlerTestSuite) newRequest(scopes []string,
	approvalParameters map[string]string) *model.AuthorizationRequest {
	return &model.AuthorizationRequest{
		ClientID:           "client",
		RequestedScopes:    scopes,
		ApprovalParameters: approvalParameters,
	}
}

func (suite *UserApprovalHandlerTestSuite) TestExplicitlyApprovedScopes() {
	request := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "approved"})

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)
	assert.True(suite.T(), request.Approved)
	assert.Equal(suite.T(), []string{"read"}, request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 1)
	assert.Equal(suite.T(), model.ApprovalStatusApproved, approvals[0].Status)
}

func (suite *UserApprovalHandlerTestSuite) TestImplicitlyDeniedScope() {
	request := suite.newRequest([]string{"read", "write"}, map[string]string{"scope.read": "approved"})

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), approved)
	assert.False(suite.T(), request.Approved)
	assert.Equal(suite.T(), []string{"read"}, request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 2)

	statusByScope := make(map[string]model.ApprovalStatus, len(approvals))
	for _, approval := range approvals {
		statusByScope[approval.Scope] = approval.Status
	}
	assert.Equal(suite.T(), model.ApprovalStatusApproved, statusByScope["read"])
	assert.Equal(suite.T(), model.ApprovalStatusDenied, statusByScope["write"])
}

func (suite *UserApprovalHandlerTestSuite) TestExplicitlyDeniedScope() {
	request := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "denied"})

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), approved)
	assert.Empty(suite.T(), request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 1)
	assert.Equal(suite.T(), model.ApprovalStatusDenied, approvals[0].Status)
}

func (suite *UserApprovalHandlerTestSuite) TestApprovalParameterValueCaseInsensitive() {
	request := suite.newRequest([]string{"read", "write"}, map[string]string{
		"scope.read":  "Approved",
		"scope.write": "APPROVED",
	})

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)
	assert.Equal(suite.T(), []string{"read", "write"}, request.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestMalformedParameterValueDenies() {
	request := suite.newRequest([]string{"read", "write"}, map[string]string{
		"scope.read":  "yes",
		"scope.write": "",
	})

	approved, err := suite.handler.IsApproved(request, "user")

	// Unrecognized input is conservatively denied, never an error.
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), approved)
	assert.Empty(suite.T(), request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 2)
	for _, approval := range approvals {
		assert.Equal(suite.T(), model.ApprovalStatusDenied, approval.Status)
	}
}

func (suite *UserApprovalHandlerTestSuite) TestEmptyRequestedScopes() {
	request := suite.newRequest(nil, nil)

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)
	assert.Empty(suite.T(), request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), approvals)
}

func (suite *UserApprovalHandlerTestSuite) TestDuplicateRequestedScopes() {
	request := suite.newRequest([]string{"read", "read"}, map[string]string{"scope.read": "approved"})

	approved, err := suite.handler.IsApproved(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)
	assert.Equal(suite.T(), []string{"read"}, request.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 1)
}

func (suite *UserApprovalHandlerTestSuite) TestResolutionPersistsForwardLookingExpiry() {
	request := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "approved"})

	_, err := suite.handler.IsApproved(request, "user")
	assert.NoError(suite.T(), err)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 1)
	assert.True(suite.T(), approvals[0].ExpiryTime.After(time.Now()))
}

func (suite *UserApprovalHandlerTestSuite) TestReResolutionSupersedesRecords() {
	request := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "approved"})
	approved, err := suite.handler.IsApproved(request, "user")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)

	// Re-resolving with the same parameters yields the same verdict and
	// supersedes, not duplicates, the stored record per key.
	repeat := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "approved"})
	approved, err = suite.handler.IsApproved(repeat, "user")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)
	assert.Equal(suite.T(), request.ApprovedScopes, repeat.ApprovedScopes)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), approvals, 1)
}

func (suite *UserApprovalHandlerTestSuite) TestStoreErrorLeavesRequestUntouched() {
	handler := NewUserApprovalHandler(&failingApprovalStore{})
	request := suite.newRequest([]string{"read"}, map[string]string{"scope.read": "approved"})

	approved, err := handler.IsApproved(request, "user")

	assert.Error(suite.T(), err)
	assert.False(suite.T(), approved)
	assert.False(suite.T(), request.Approved)
	assert.Nil(suite.T(), request.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestExplicitlyPreapprovedScopes() {
	err := suite.store.AddApprovals([]model.Approval{
		{
			UserID:     "user",
			ClientID:   "client",
			Scope:      "read",
			ExpiryTime: time.Now().Add(10 * time.Second),
			Status:     model.ApprovalStatusApproved,
		},
	})
	assert.NoError(suite.T(), err)

	request := suite.newRequest([]string{"read"}, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Approved)
	assert.Equal(suite.T(), []string{"read"}, result.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestExpiredPreapprovedScopes() {
	err := suite.store.AddApprovals([]model.Approval{
		{
			UserID:     "user",
			ClientID:   "client",
			Scope:      "read",
			ExpiryTime: time.Now().Add(-10 * time.Second),
			Status:     model.ApprovalStatusApproved,
		},
	})
	assert.NoError(suite.T(), err)

	request := suite.newRequest([]string{"read"}, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Approved)
	assert.Empty(suite.T(), result.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestPartiallyPreapprovedScopes() {
	err := suite.store.AddApprovals([]model.Approval{
		{
			UserID:     "user",
			ClientID:   "client",
			Scope:      "read",
			ExpiryTime: time.Now().Add(10 * time.Second),
			Status:     model.ApprovalStatusApproved,
		},
	})
	assert.NoError(suite.T(), err)

	request := suite.newRequest([]string{"read", "write"}, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")

	// The approved scope set is not partially populated; the request falls
	// through to the resolver path untouched.
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Approved)
	assert.Nil(suite.T(), result.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestDeniedRecordDoesNotPreapprove() {
	err := suite.store.AddApprovals([]model.Approval{
		{
			UserID:     "user",
			ClientID:   "client",
			Scope:      "read",
			ExpiryTime: time.Now().Add(10 * time.Second),
			Status:     model.ApprovalStatusDenied,
		},
	})
	assert.NoError(suite.T(), err)

	request := suite.newRequest([]string{"read"}, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Approved)
}

func (suite *UserApprovalHandlerTestSuite) TestPreApprovalDoesNotMutateStore() {
	seeded := model.Approval{
		UserID:     "user",
		ClientID:   "client",
		Scope:      "read",
		ExpiryTime: time.Now().Add(10 * time.Second),
		Status:     model.ApprovalStatusApproved,
	}
	err := suite.store.AddApprovals([]model.Approval{seeded})
	assert.NoError(suite.T(), err)

	request := suite.newRequest([]string{"read", "write"}, nil)
	_, err = suite.handler.CheckForPreApproval(request, "user")
	assert.NoError(suite.T(), err)

	approvals, err := suite.store.GetApprovals("user", "client")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []model.Approval{seeded}, approvals)
}

func (suite *UserApprovalHandlerTestSuite) TestPreApprovalEmptyRequestedScopes() {
	request := suite.newRequest(nil, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Approved)
	assert.Empty(suite.T(), result.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestPreApprovalSelectsLatestRecordPerScope() {
	// A store surfacing more than one record per scope resolves to the one
	// with the latest expiry.
	handler := NewUserApprovalHandler(&fixedApprovalStore{
		approvals: []model.Approval{
			{
				UserID:     "user",
				ClientID:   "client",
				Scope:      "read",
				ExpiryTime: time.Now().Add(-10 * time.Second),
				Status:     model.ApprovalStatusApproved,
			},
			{
				UserID:     "user",
				ClientID:   "client",
				Scope:      "read",
				ExpiryTime: time.Now().Add(10 * time.Second),
				Status:     model.ApprovalStatusApproved,
			},
		},
	})

	request := suite.newRequest([]string{"read"}, nil)
	result, err := handler.CheckForPreApproval(request, "user")

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Approved)
}

func (suite *UserApprovalHandlerTestSuite) TestPreApprovalStoreError() {
	handler := NewUserApprovalHandler(&failingApprovalStore{})
	request := suite.newRequest([]string{"read"}, nil)

	result, err := handler.CheckForPreApproval(request, "user")

	assert.Error(suite.T(), err)
	assert.False(suite.T(), result.Approved)
	assert.Nil(suite.T(), result.ApprovedScopes)
}

func (suite *UserApprovalHandlerTestSuite) TestResolutionEnablesLaterPreApproval() {
	// A denied pre-approval check falls through to resolution; once the user
	// approves, a fresh request for the same scopes auto-approves from history.
	request := suite.newRequest([]string{"read"}, nil)
	result, err := suite.handler.CheckForPreApproval(request, "user")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), result.Approved)

	request.ApprovalParameters = map[string]string{"scope.read": "approved"}
	approved, err := suite.handler.IsApproved(request, "user")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), approved)

	fresh := suite.newRequest([]string{"read"}, nil)
	result, err = suite.handler.CheckForPreApproval(fresh, "user")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Approved)
	assert.Equal(suite.T(), []string{"read"}, result.ApprovedScopes)
}

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

// Package constants defines the constants used for OAuth2 user approval handling.
package constants

const (
	// ScopeParameterPrefix is the prefix of the per-scope approval parameter key,
	// e.g. the decision for scope "read" is submitted under "scope.read".
	ScopeParameterPrefix = "scope."
	// ApprovalParameterValueApproved is the decision token that approves a scope.
	// Any other value, or an absent parameter, denies the scope.
	ApprovalParameterValueApproved = "approved"
)

// DefaultApprovalValidityPeriod is the lifetime of a persisted approval decision
// in seconds, used when no value is configured. Defaults to 30 days.
const DefaultApprovalValidityPeriod int64 = 30 * 24 * 60 * 60

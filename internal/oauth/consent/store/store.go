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

// Package store provides functionality for persisting and retrieving user approval decisions.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asgardeo/consent/internal/oauth/consent/constants"
	"github.com/asgardeo/consent/internal/oauth/consent/model"
	"github.com/asgardeo/consent/internal/system/database/provider"
	"github.com/asgardeo/consent/internal/system/log"
)

const loggerComponentName = "ApprovalStore"

// ApprovalStoreInterface defines the contract for managing user approval decisions.
// Implementations must be safe for concurrent use by independent authorization flows.
type ApprovalStoreInterface interface {
	// AddApprovals stores the given records as one batch. A record supersedes any
	// prior record with the same (userID, clientID, scope) key; within a batch,
	// last write wins by sequence order.
	AddApprovals(approvals []model.Approval) error
	// GetApprovals returns every currently stored approval for the (user, client)
	// pair, regardless of status or expiry. Callers decide how to interpret expiry.
	GetApprovals(userID, clientID string) ([]model.Approval, error)
	// RevokeApprovals removes the current record for each given record's key.
	RevokeApprovals(approvals []model.Approval) error
}

// JDBCApprovalStore implements the ApprovalStoreInterface against the runtime database.
type JDBCApprovalStore struct {
	DBProvider provider.DBProviderInterface
}

// NewJDBCApprovalStore creates a new instance of JDBCApprovalStore.
func NewJDBCApprovalStore() ApprovalStoreInterface {
	return &JDBCApprovalStore{
		DBProvider: provider.GetDBProvider(),
	}
}

// AddApprovals stores the given approval records in a single transaction.
func (s *JDBCApprovalStore) AddApprovals(approvals []model.Approval) error {
	if len(approvals) == 0 {
		return nil
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return err
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		logger.Error("Failed to begin transaction", log.Error(err))
		return errors.New("failed to begin transaction: " + err.Error())
	}

	for _, approval := range approvals {
		_, err = tx.Exec(constants.QueryUpsertUserApproval.Query, approval.UserID, approval.ClientID,
			approval.Scope, string(approval.Status), approval.ExpiryTime)
		if err != nil {
			logger.Error("Failed to store approval", log.Error(err))
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Error("Failed to rollback transaction", log.Error(rollbackErr))
				err = errors.Join(err, errors.New("failed to rollback transaction: "+rollbackErr.Error()))
			}
			return errors.New("failed to store approval: " + err.Error())
		}
	}

	if err = tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", log.Error(err))
		return errors.New("failed to commit transaction: " + err.Error())
	}

	return nil
}

// GetApprovals retrieves every stored approval decision for the (user, client) pair.
func (s *JDBCApprovalStore) GetApprovals(userID, clientID string) ([]model.Approval, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return nil, err
	}

	results, err := dbClient.Query(constants.QueryGetUserApprovals, userID, clientID)
	if err != nil {
		return nil, fmt.Errorf("error while retrieving approvals: %w", err)
	}

	approvals := make([]model.Approval, 0, len(results))
	for _, row := range results {
		scope, ok := row["scope"].(string)
		if !ok {
			return nil, errors.New("failed to parse scope from result row")
		}
		status, ok := row["status"].(string)
		if !ok {
			return nil, errors.New("failed to parse status from result row")
		}

		expiryTime, err := parseTimeField(row["expiry_time"], "expiry_time", logger)
		if err != nil {
			return nil, err
		}

		approvals = append(approvals, model.Approval{
			UserID:     userID,
			ClientID:   clientID,
			Scope:      scope,
			ExpiryTime: expiryTime,
			Status:     model.ApprovalStatus(status),
		})
	}

	return approvals, nil
}

// RevokeApprovals removes the stored approval decisions for the given records' keys
// in a single transaction.
func (s *JDBCApprovalStore) RevokeApprovals(approvals []model.Approval) error {
	if len(approvals) == 0 {
		return nil
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	dbClient, err := s.DBProvider.GetDBClient("runtime")
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return err
	}

	tx, err := dbClient.BeginTx()
	if err != nil {
		logger.Error("Failed to begin transaction", log.Error(err))
		return errors.New("failed to begin transaction: " + err.Error())
	}

	for _, approval := range approvals {
		_, err = tx.Exec(constants.QueryDeleteUserApproval.Query, approval.UserID, approval.ClientID,
			approval.Scope)
		if err != nil {
			logger.Error("Failed to revoke approval", log.Error(err))
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Error("Failed to rollback transaction", log.Error(rollbackErr))
				err = errors.Join(err, errors.New("failed to rollback transaction: "+rollbackErr.Error()))
			}
			return errors.New("failed to revoke approval: " + err.Error())
		}
	}

	if err = tx.Commit(); err != nil {
		logger.Error("Failed to commit transaction", log.Error(err))
		return errors.New("failed to commit transaction: " + err.Error())
	}

	return nil
}

// Helper function to parse a time field from the database.
func parseTimeField(field interface{}, fieldName string, logger *log.Logger) (time.Time, error) {
	const customTimeFormat = "2006-01-02 15:04:05.999999999"

	switch v := field.(type) {
	case string:
		trimmedTime := trimTimeString(v)
		parsedTime, err := time.Parse(customTimeFormat, trimmedTime)
		if err != nil {
			logger.Error("Error parsing time field", log.String("field", fieldName), log.Error(err))
			return time.Time{}, fmt.Errorf("error parsing %s: %w", fieldName, err)
		}
		return parsedTime, nil
	case time.Time:
		return v, nil
	default:
		logger.Error("Unexpected type for time field", log.String("field", fieldName), log.Any("value", v))
		return time.Time{}, fmt.Errorf("unexpected type for %s", fieldName)
	}
}

// Helper function to trim a time string.
func trimTimeString(timeStr string) string {
	// Split the string into parts by spaces and retain only the first two parts.
	parts := strings.SplitN(timeStr, " ", 3)
	if len(parts) >= 2 {
		return parts[0] + " " + parts[1]
	}
	return timeStr
}

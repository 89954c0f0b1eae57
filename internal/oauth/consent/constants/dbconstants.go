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

package constants

import dbmodel "github.com/asgardeo/consent/internal/system/database/model"

// QueryUpsertUserApproval is the query to store an approval decision, superseding
// any prior record for the same (user, client, scope) key.
var QueryUpsertUserApproval = dbmodel.DBQuery{
	ID: "APQ-00001",
	Query: "INSERT INTO IDN_OAUTH2_USER_APPROVAL (USER_ID, CONSUMER_KEY, SCOPE, STATUS, EXPIRY_TIME) " +
		"VALUES ($1, $2, $3, $4, $5) " +
		"ON CONFLICT (USER_ID, CONSUMER_KEY, SCOPE) " +
		"DO UPDATE SET STATUS = EXCLUDED.STATUS, EXPIRY_TIME = EXCLUDED.EXPIRY_TIME",
}

// QueryGetUserApprovals is the query to retrieve every stored approval decision
// for a (user, client) pair.
var QueryGetUserApprovals = dbmodel.DBQuery{
	ID: "APQ-00002",
	Query: "SELECT SCOPE, STATUS, EXPIRY_TIME FROM IDN_OAUTH2_USER_APPROVAL WHERE " +
		"USER_ID = $1 AND CONSUMER_KEY = $2",
}

// QueryDeleteUserApproval is the query to revoke a stored approval decision.
var QueryDeleteUserApproval = dbmodel.DBQuery{
	ID: "APQ-00003",
	Query: "DELETE FROM IDN_OAUTH2_USER_APPROVAL WHERE " +
		"USER_ID = $1 AND CONSUMER_KEY = $2 AND SCOPE = $3",
}

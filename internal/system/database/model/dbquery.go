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

package model

const (
	// DBTypePostgres is the identifier for PostgreSQL data sources.
	DBTypePostgres = "postgres"
	// DBTypeSQLite is the identifier for SQLite data sources.
	DBTypeSQLite = "sqlite"
)

// DBQuery represents a named database query, optionally with per-dialect variants.
type DBQuery struct {
	ID            string
	Query         string
	PostgresQuery string
	SQLiteQuery   string
}

// GetID returns the identifier of the query.
func (q DBQuery) GetID() string {
	return q.ID
}

// GetQuery returns the query string for the given database type.
// Falls back to the default query when no dialect-specific variant is defined.
func (q DBQuery) GetQuery(dbType string) string {
	switch dbType {
	case DBTypePostgres:
		if q.PostgresQuery != "" {
			return q.PostgresQuery
		}
	case DBTypeSQLite:
		if q.SQLiteQuery != "" {
			return q.SQLiteQuery
		}
	}
	return q.Query
}

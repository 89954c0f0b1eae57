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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"
	"sync"
	"syscall"
	"time"

	"github.com/asgardeo/consent/internal/system/config"
	"github.com/asgardeo/consent/internal/system/database/client"
	dbmodel "github.com/asgardeo/consent/internal/system/database/model"
	"github.com/asgardeo/consent/internal/system/log"
)

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(dbName string) (client.DBClientInterface, error)
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	identityClient client.DBClientInterface
	identityMutex  sync.RWMutex
	runtimeClient  client.DBClientInterface
	runtimeMutex   sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the instance of DBProvider.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		instance = &DBProvider{}
		instance.closeOnInterrupt()
	})
	return instance
}

// GetDBClient returns a database client based on the provided database name.
// Not required to close the returned client manually since it manages its own connection pool.
func (d *DBProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	switch dbName {
	case "identity":
		identityDBConfig := config.GetConsentRuntime().Config.Database.Identity
		return d.getOrInitClient(&d.identityClient, &d.identityMutex, identityDBConfig)
	case "runtime":
		runtimeDBConfig := config.GetConsentRuntime().Config.Database.Runtime
		return d.getOrInitClient(&d.runtimeClient, &d.runtimeMutex, runtimeDBConfig)
	default:
		return nil, fmt.Errorf("unsupported database name: %s", dbName)
	}
}

// getOrInitClient gets or initializes a DB client with locking.
func (d *DBProvider) getOrInitClient(
	clientPtr *client.DBClientInterface,
	mutex *sync.RWMutex,
	dataSource config.DataSource,
) (client.DBClientInterface, error) {
	mutex.RLock()
	if *clientPtr != nil {
		dbClient := *clientPtr
		mutex.RUnlock()
		return dbClient, nil
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	if *clientPtr != nil {
		return *clientPtr, nil
	}

	if err := d.initializeClient(clientPtr, dataSource); err != nil {
		return nil, err
	}

	return *clientPtr, nil
}

// initializeClient initializes a database client and assigns it to the provided pointer.
func (d *DBProvider) initializeClient(clientPtr *client.DBClientInterface, dataSource config.DataSource) error {
	dbConfig := d.getDBConfig(dataSource)
	dbName := dataSource.Name

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database %s: %w", dbName, err)
	}

	// Configure connection pool using values from configuration
	db.SetMaxOpenConns(dataSource.MaxOpenConns)
	db.SetMaxIdleConns(dataSource.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(dataSource.ConnMaxLifetime) * time.Second)

	// Test the database connection.
	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return fmt.Errorf("failed to ping database %s: %w (close error: %w)", dbName, err, closeErr)
		}
		return fmt.Errorf("failed to ping database %s: %w", dbName, err)
	}

	// Enable foreign key constraints for SQLite databases
	if dbConfig.driverName == dbmodel.DBTypeSQLite {
		_, err := db.Exec("PRAGMA foreign_keys = ON;")
		if err != nil {
			if closeErr := db.Close(); closeErr != nil {
				return fmt.Errorf("failed to enable foreign key constraints for %s: %w (close error: %w)",
					dbName, err, closeErr)
			}
			return fmt.Errorf("failed to enable foreign key constraints for %s: %w", dbName, err)
		}
	}

	*clientPtr = client.NewDBClient(dbmodel.NewDB(db), dbConfig.driverName)
	return nil
}

// getDBConfig returns the database configuration based on the provided data source.
func (d *DBProvider) getDBConfig(dataSource config.DataSource) dbConfig {
	var dbConfig dbConfig

	switch dataSource.Type {
	case dbmodel.DBTypePostgres:
		dbConfig.driverName = dbmodel.DBTypePostgres
		dbConfig.dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
			dataSource.Name, dataSource.SSLMode)
	case dbmodel.DBTypeSQLite:
		dbConfig.driverName = dbmodel.DBTypeSQLite
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbConfig.dsn = fmt.Sprintf("%s%s", path.Join(config.GetConsentRuntime().ConsentHome, dataSource.Path), options)
	}

	return dbConfig
}

// closeOnInterrupt sets up signal handling for graceful shutdown
func (d *DBProvider) closeOnInterrupt() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger := log.GetLogger()
		if err := d.close(); err != nil {
			logger.Error("Error closing database connections", log.Error(err))
		} else {
			logger.Debug("Database connections closed successfully")
		}
	}()
}

// close closes the database connections
func (d *DBProvider) close() error {
	identityErr := d.closeClient(&d.identityClient, &d.identityMutex, "identity")
	runtimeErr := d.closeClient(&d.runtimeClient, &d.runtimeMutex, "runtime")
	return errors.Join(identityErr, runtimeErr)
}

// closeClient is a helper to close a DB client with locking.
func (d *DBProvider) closeClient(clientPtr *client.DBClientInterface, mutex *sync.RWMutex, clientName string) error {
	mutex.Lock()
	defer mutex.Unlock()
	if *clientPtr != nil {
		if err := (*clientPtr).Close(); err != nil {
			return fmt.Errorf("failed to close %s client: %w", clientName, err)
		}
		*clientPtr = nil
	}
	return nil
}

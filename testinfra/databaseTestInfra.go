package testinfra

import (
	"context"
	"log"
	"os"
	"shopfloor/domain/catalog"
	"shopfloor/persistence"
	"shopfloor/schema"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartSqliteTestDatabase opens a private in-memory database with every table migrated
// and makes it the active data source.
func StartSqliteTestDatabase() *TestDatabase {
	dbConfig := &persistence.DatabaseConfig{DriverType: "sqlite3", DriverArgs: ":memory:", Timeout: 5 * time.Second}
	return startTestDatabase("memory", dbConfig)
}

// StartMysqlTestDatabase TEST_MYSQL_SERVICE=root:root@(127.0.0.1:3306)
func StartMysqlTestDatabase(baseName string) *TestDatabase {
	mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE")
	if mysqlSvc == "" {
		mysqlSvc = "root:root@(127.0.0.1:3306)"
	}
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	dbConfig := &persistence.DatabaseConfig{
		DriverType: "mysql", DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s",
		Timeout: 5 * time.Second,
	}

	// create database (no conflict)
	if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
		log.Fatalf("failed to prepare database %v\n", err)
	}
	return startTestDatabase(databaseName, dbConfig)
}

func startTestDatabase(databaseName string, dbConfig *persistence.DatabaseConfig) *TestDatabase {
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		defer ds.Stop()
		log.Fatalf("database conneciton failed %v\n", err)
	}
	if err := schema.Migrate(ds.GormDB(context.Background())); err != nil {
		defer ds.Stop()
		log.Fatalf("database migration failed %v\n", err)
	}

	persistence.ActiveDataSourceManager = ds
	catalog.InvalidateCache()
	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.DS.DatabaseConfig.DriverType == "mysql" {
		if err := testDatabase.DS.GormDB(context.Background()).Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
			log.Println("failed to drop test database: " + testDatabase.TestDatabaseName)
		} else {
			log.Println("test database " + testDatabase.TestDatabaseName + " dropped")
		}
	}

	// close connection
	testDatabase.DS.Stop()
}

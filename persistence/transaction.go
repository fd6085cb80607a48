package persistence

import (
	"context"
	"database/sql/driver"
	"errors"
	"shopfloor/bizerror"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/mattn/go-sqlite3"
)

const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// Transaction runs fn inside one database transaction bounded by the configured store timeout.
// Store failures that a retry could cure come back as *bizerror.ErrTransientStore.
func Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return ActiveDataSourceManager.Transaction(ctx, fn)
}

func (m *DataSourceManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout())
	defer cancel()

	tx := m.GormDB(ctx).BeginTx(ctx, nil)
	if tx.Error != nil {
		return ClassifyError(ctx, tx.Error)
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			tx.Rollback()
		}
	}()

	err = fn(tx)
	panicked = false
	if err != nil {
		return ClassifyError(ctx, err)
	}
	if err = tx.Commit().Error; err != nil {
		return ClassifyError(ctx, err)
	}
	return nil
}

// ClassifyError wraps timeouts, broken connections, lock waits and deadlocks as transient failures.
func ClassifyError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if bizerror.IsRetryable(err) {
		return err
	}
	if IsTransient(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &bizerror.ErrTransientStore{Cause: err}
	}
	return err
}

func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlLockWaitTimeout || mysqlErr.Number == mysqlDeadlock
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// IsNotFound reports whether err means the queried row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ForUpdate makes the next query on tx take row locks where the dialect supports it.
// sqlite serialises writers on its own.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialect().GetName() == "mysql" {
		return tx.Set("gorm:query_option", "FOR UPDATE")
	}
	return tx
}

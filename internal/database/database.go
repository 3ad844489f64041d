// Package database stores person catalogs and known relations in libSQL,
// one database per project in multi-project mode.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const defaultProject = "default"

// DBManager handles all database operations
type DBManager struct {
	config *Config
	logger *zap.Logger
	dbs    map[string]*sql.DB
	mu     sync.RWMutex

	stmtMu    sync.RWMutex
	stmtCache map[string]map[string]*sql.Stmt
}

// SetLogger replaces the manager's logger; nil restores the no-op logger.
func (dm *DBManager) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	dm.logger = l
}

// MultiProject reports whether each project gets its own database file.
func (dm *DBManager) MultiProject() bool { return dm.config.MultiProjectMode }

// Close closes all database connections
func (dm *DBManager) Close() error {
	dm.closeStmts()

	dm.mu.Lock()
	defer dm.mu.Unlock()

	var errs []error
	for name, db := range dm.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database for project %s: %w", name, err))
		}
	}
	dm.dbs = make(map[string]*sql.DB)

	if len(errs) > 0 {
		errorMessages := make([]string, len(errs))
		for i, err := range errs {
			errorMessages[i] = err.Error()
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}

	return nil
}

// placeholders returns "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}

// PoolStats sums in-use and idle connections across all open project databases.
func (dm *DBManager) PoolStats() (inUse, idle int) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, db := range dm.dbs {
		s := db.Stats()
		inUse += s.InUse
		idle += s.Idle
	}
	return inUse, idle
}

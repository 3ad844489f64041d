package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
)

// NewDBManager creates a new database manager
func NewDBManager(config *Config) (*DBManager, error) {
	manager := &DBManager{
		config:    config,
		logger:    zap.NewNop(),
		dbs:       make(map[string]*sql.DB),
		stmtCache: make(map[string]map[string]*sql.Stmt),
	}

	// If not in multi-project mode, initialize the default database immediately
	if !config.MultiProjectMode {
		_, err := manager.getDB(defaultProject)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize default database: %w", err)
		}
	}

	return manager, nil
}

// projectKey maps a caller's project name to the key of the database serving it.
// A single database serves every project name outside multi-project mode.
func (dm *DBManager) projectKey(projectName string) string {
	if !dm.config.MultiProjectMode || strings.TrimSpace(projectName) == "" {
		return defaultProject
	}
	return projectName
}

// getDB retrieves a database connection for a given project, creating it if necessary
func (dm *DBManager) getDB(projectName string) (*sql.DB, error) {
	projectName = dm.projectKey(projectName)

	dm.mu.RLock()
	db, ok := dm.dbs[projectName]
	dm.mu.RUnlock()

	if ok {
		return db, nil
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	// Double-check if another goroutine created the DB while we were waiting for the lock
	db, ok = dm.dbs[projectName]
	if ok {
		return db, nil
	}

	var dbURL string
	if dm.config.MultiProjectMode {
		if strings.ContainsAny(projectName, `/\`) || projectName == ".." {
			return nil, fmt.Errorf("invalid project name %q", projectName)
		}
		dbPath := filepath.Join(dm.config.ProjectsDir, projectName, "lifechain.db")
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create project directory for %s: %w", projectName, err)
		}
		dbURL = fmt.Sprintf("file:%s", dbPath)
	} else {
		dbURL = dm.config.URL
	}

	newDb, err := sql.Open("libsql", dm.withAuthToken(dbURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create database connector for project %s: %w", projectName, err)
	}

	// Initialize schema
	if err := dm.initialize(newDb); err != nil {
		newDb.Close()
		return nil, fmt.Errorf("failed to initialize database for project %s: %w", projectName, err)
	}

	// Apply connection pool tuning from config
	if dm.config.MaxOpenConns > 0 {
		newDb.SetMaxOpenConns(dm.config.MaxOpenConns)
	}
	if dm.config.MaxIdleConns > 0 {
		newDb.SetMaxIdleConns(dm.config.MaxIdleConns)
	}
	if dm.config.ConnMaxIdleSec > 0 {
		newDb.SetConnMaxIdleTime(time.Duration(dm.config.ConnMaxIdleSec) * time.Second)
	}
	if dm.config.ConnMaxLifeSec > 0 {
		newDb.SetConnMaxLifetime(time.Duration(dm.config.ConnMaxLifeSec) * time.Second)
	}

	dm.dbs[projectName] = newDb
	dm.logger.Debug("opened project database", zap.String("project", projectName))

	stats := newDb.Stats()
	metrics.Default().ObservePoolStats(stats.InUse, stats.Idle)
	return newDb, nil
}

// withAuthToken appends the auth token to remote URLs; local files are left alone.
func (dm *DBManager) withAuthToken(dbURL string) string {
	if strings.HasPrefix(dbURL, "file:") || dm.config.AuthToken == "" {
		return dbURL
	}
	if u, err := url.Parse(dbURL); err == nil {
		q := u.Query()
		q.Set("authToken", dm.config.AuthToken)
		u.RawQuery = q.Encode()
		return u.String()
	}
	if strings.Contains(dbURL, "?") {
		return dbURL + "&authToken=" + url.QueryEscape(dm.config.AuthToken)
	}
	return dbURL + "?authToken=" + url.QueryEscape(dm.config.AuthToken)
}

// initialize creates tables and indexes if they don't exist
func (dm *DBManager) initialize(db *sql.DB) error {
	done := metrics.TimeOp("db_initialize")
	success := false
	defer func() { done(success) }()
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for initialization: %w", err)
	}
	defer tx.Rollback()

	for _, statement := range schema {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

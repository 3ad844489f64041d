package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
)

// getPreparedStmt returns or prepares and caches a statement for the given project DB
func (dm *DBManager) getPreparedStmt(ctx context.Context, projectName string, db *sql.DB, sqlText string) (*sql.Stmt, error) {
	// fast path read
	dm.stmtMu.RLock()
	if projCache, ok := dm.stmtCache[projectName]; ok {
		if stmt, ok2 := projCache[sqlText]; ok2 {
			dm.stmtMu.RUnlock()
			metrics.Default().IncStmtCacheHit("prepare")
			return stmt, nil
		}
	}
	dm.stmtMu.RUnlock()
	metrics.Default().IncStmtCacheMiss("prepare")

	stmt, err := db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	dm.stmtMu.Lock()
	defer dm.stmtMu.Unlock()
	if _, ok := dm.stmtCache[projectName]; !ok {
		dm.stmtCache[projectName] = make(map[string]*sql.Stmt)
	}
	// another caller may have raced us here
	if existing, ok := dm.stmtCache[projectName][sqlText]; ok {
		stmt.Close()
		return existing, nil
	}
	dm.stmtCache[projectName][sqlText] = stmt
	return stmt, nil
}

// closeStmts closes every cached statement. Caller holds no locks.
func (dm *DBManager) closeStmts() {
	dm.stmtMu.Lock()
	defer dm.stmtMu.Unlock()
	for _, proj := range dm.stmtCache {
		for _, stmt := range proj {
			stmt.Close()
		}
	}
	dm.stmtCache = make(map[string]map[string]*sql.Stmt)
}

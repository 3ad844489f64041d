package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
)

// CreateRelations records known relations between existing persons.
// Duplicates are ignored. Relations never affect chain search.
func (dm *DBManager) CreateRelations(ctx context.Context, projectName string, relations []apptype.Relation) error {
	done := metrics.TimeOp("db_create_relations")
	success := false
	defer func() { done(success) }()
	db, err := dm.getDB(projectName)
	if err != nil {
		return err
	}

	if len(relations) == 0 {
		success = true
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	endpoints := make([]string, 0, len(relations)*2)
	seen := make(map[string]struct{}, len(relations)*2)
	for _, r := range relations {
		if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" || strings.TrimSpace(r.RelationType) == "" {
			return fmt.Errorf("relation fields cannot be empty")
		}
		for _, id := range []string{r.From, r.To} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				endpoints = append(endpoints, id)
			}
		}
	}

	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf("SELECT id FROM persons WHERE id IN (%s)", placeholders(len(endpoints))),
		stringArgs(endpoints)...)
	if err != nil {
		return fmt.Errorf("failed to verify relation endpoints: %w", err)
	}
	found, err := collectIDs(rows)
	if err != nil {
		return fmt.Errorf("failed to verify relation endpoints: %w", err)
	}
	var missing []string
	for _, id := range endpoints {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("relation endpoints must exist before linking: missing %s", strings.Join(missing, ", "))
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO relations (source, target, relation_type) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, relation := range relations {
		if _, err := stmt.ExecContext(ctx, relation.From, relation.To, relation.RelationType); err != nil {
			return fmt.Errorf("failed to insert relation (%s -> %s): %w", relation.From, relation.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	success = true
	return nil
}

// idRows is the subset of *sql.Rows that collectIDs reads.
type idRows interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

// collectIDs drains a single-column id result set and closes it.
func collectIDs(rows idRows) (map[string]bool, error) {
	defer rows.Close()
	found := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan person id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return found, nil
}

// RelationsAmong returns the known relations whose endpoints are both in ids,
// typically the persons of one computed chain.
func (dm *DBManager) RelationsAmong(ctx context.Context, projectName string, ids []string) ([]apptype.Relation, error) {
	done := metrics.TimeOp("db_relations_among")
	success := false
	defer func() { done(success) }()
	out := make([]apptype.Relation, 0)
	if len(ids) == 0 {
		success = true
		return out, nil
	}
	db, err := dm.getDB(projectName)
	if err != nil {
		return nil, err
	}
	in := placeholders(len(ids))
	args := stringArgs(ids)
	rows, err := db.QueryContext(ctx,
		fmt.Sprintf("SELECT source, target, relation_type FROM relations WHERE source IN (%s) AND target IN (%s) ORDER BY id", in, in),
		append(append([]any{}, args...), args...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r apptype.Relation
		if err := rows.Scan(&r.From, &r.To, &r.RelationType); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	success = true
	return out, nil
}

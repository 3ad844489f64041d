package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
)

const personColumns = "id, name, born, died, fame, domains, region"

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 500
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(r rowScanner) (apptype.Person, error) {
	var (
		p       apptype.Person
		died    sql.NullInt64
		domains string
	)
	if err := r.Scan(&p.ID, &p.Name, &p.Born, &died, &p.Fame, &domains, &p.Region); err != nil {
		return apptype.Person{}, err
	}
	if died.Valid {
		p.Died = apptype.Year(int(died.Int64))
	}
	if domains != "" && domains != "[]" {
		if err := json.Unmarshal([]byte(domains), &p.Domains); err != nil {
			return apptype.Person{}, fmt.Errorf("failed to decode domains for %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func collectPersons(rows *sql.Rows) ([]apptype.Person, error) {
	defer rows.Close()
	out := make([]apptype.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertPersons validates and inserts or replaces persons by id, returning
// them as stored. Persons without an id get one derived from name and birth
// year. The whole batch is rejected if any person is invalid.
func (dm *DBManager) UpsertPersons(ctx context.Context, projectName string, persons []apptype.Person) ([]apptype.Person, error) {
	done := metrics.TimeOp("db_upsert_persons")
	success := false
	defer func() { done(success) }()

	normalized := make([]apptype.Person, len(persons))
	for i, p := range persons {
		p.Normalize()
		normalized[i] = p
	}
	if err := apptype.ValidatePersons(normalized); err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		success = true
		return normalized, nil
	}

	db, err := dm.getDB(projectName)
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO persons (`+personColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            born = excluded.born,
            died = excluded.died,
            fame = excluded.fame,
            domains = excluded.domains,
            region = excluded.region`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range normalized {
		domains, err := json.Marshal(nonNil(p.Domains))
		if err != nil {
			return nil, fmt.Errorf("failed to encode domains for %s: %w", p.ID, err)
		}
		var died any
		if p.Died != nil {
			died = *p.Died
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Born, died, p.Fame, string(domains), p.Region); err != nil {
			return nil, fmt.Errorf("failed to upsert person %q: %w", p.Name, err)
		}
	}
	if err := bumpGeneration(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	dm.logger.Debug("upserted persons",
		zap.String("project", dm.projectKey(projectName)),
		zap.Int("count", len(normalized)))
	success = true
	return normalized, nil
}

// ListPersons returns the whole catalog of a project, most famous first.
func (dm *DBManager) ListPersons(ctx context.Context, projectName string) ([]apptype.Person, error) {
	done := metrics.TimeOp("db_list_persons")
	success := false
	defer func() { done(success) }()
	db, err := dm.getDB(projectName)
	if err != nil {
		return nil, err
	}
	stmt, err := dm.getPreparedStmt(ctx, dm.projectKey(projectName), db,
		"SELECT "+personColumns+" FROM persons ORDER BY fame DESC, id")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	out, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return out, nil
}

// GetPersonsByName returns every person whose display name is in names,
// most famous first. Unknown names are ignored.
func (dm *DBManager) GetPersonsByName(ctx context.Context, projectName string, names []string) ([]apptype.Person, error) {
	return dm.getPersonsBy(ctx, projectName, "name", names)
}

// GetPersonsByID returns the persons with the given ids, most famous first.
func (dm *DBManager) GetPersonsByID(ctx context.Context, projectName string, ids []string) ([]apptype.Person, error) {
	return dm.getPersonsBy(ctx, projectName, "id", ids)
}

func (dm *DBManager) getPersonsBy(ctx context.Context, projectName, column string, values []string) ([]apptype.Person, error) {
	done := metrics.TimeOp("db_get_persons_by_" + column)
	success := false
	defer func() { done(success) }()
	if len(values) == 0 {
		success = true
		return []apptype.Person{}, nil
	}
	db, err := dm.getDB(projectName)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM persons WHERE %s IN (%s) ORDER BY fame DESC, id",
		personColumns, column, placeholders(len(values)))
	rows, err := db.QueryContext(ctx, query, stringArgs(values)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	out, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return out, nil
}

// SearchPersons matches query as a case-insensitive substring of name,
// region or domains. Limit defaults to 10.
func (dm *DBManager) SearchPersons(ctx context.Context, projectName, query string, limit, offset int) ([]apptype.Person, error) {
	done := metrics.TimeOp("db_search_persons")
	success := false
	defer func() { done(success) }()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	db, err := dm.getDB(projectName)
	if err != nil {
		return nil, err
	}
	stmt, err := dm.getPreparedStmt(ctx, dm.projectKey(projectName), db,
		`SELECT `+personColumns+` FROM persons
        WHERE name LIKE ? ESCAPE '\' OR region LIKE ? ESCAPE '\' OR domains LIKE ? ESCAPE '\'
        ORDER BY fame DESC, id LIMIT ? OFFSET ?`)
	if err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := stmt.QueryContext(ctx, pattern, pattern, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	out, err := collectPersons(rows)
	if err != nil {
		return nil, err
	}
	success = true
	return out, nil
}

// DeletePersons removes persons and every relation touching them, returning
// the number of persons deleted.
func (dm *DBManager) DeletePersons(ctx context.Context, projectName string, ids []string) (int, error) {
	done := metrics.TimeOp("db_delete_persons")
	success := false
	defer func() { done(success) }()
	if len(ids) == 0 {
		success = true
		return 0, nil
	}
	db, err := dm.getDB(projectName)
	if err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	in := placeholders(len(ids))
	args := stringArgs(ids)
	relArgs := append(append([]any{}, args...), args...)
	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM relations WHERE source IN (%s) OR target IN (%s)", in, in), relArgs...); err != nil {
		return 0, fmt.Errorf("failed to delete relations: %w", err)
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM persons WHERE id IN (%s)", in), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete persons: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted persons: %w", err)
	}
	if n > 0 {
		if err := bumpGeneration(ctx, tx); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	success = true
	return int(n), nil
}

// Generation returns a counter that changes whenever the project's persons change.
func (dm *DBManager) Generation(ctx context.Context, projectName string) (uint64, error) {
	db, err := dm.getDB(projectName)
	if err != nil {
		return 0, err
	}
	stmt, err := dm.getPreparedStmt(ctx, dm.projectKey(projectName), db,
		"SELECT value FROM catalog_meta WHERE key = 'generation'")
	if err != nil {
		return 0, err
	}
	var gen int64
	if err := stmt.QueryRowContext(ctx).Scan(&gen); err != nil {
		return 0, fmt.Errorf("failed to read catalog generation: %w", err)
	}
	return uint64(gen), nil
}

func bumpGeneration(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "UPDATE catalog_meta SET value = value + 1 WHERE key = 'generation'"); err != nil {
		return fmt.Errorf("failed to bump catalog generation: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

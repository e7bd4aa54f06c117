// Package fixture builds SQLite observation stores from embedded, versioned
// SQL scripts. Script files carry a 4-digit prefix that fixes their order:
// 0001_schema.sql, 0002_stations.sql, ...
//
// The gateway never writes to its store; fixtures exist for tests, the e2e
// smoke test and the cmd/seed dev tool.
package fixture

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed sql/*.sql
var sqlFS embed.FS

const (
	scriptsDir = "sql"
	tableName  = "fixture_versions"

	// SchemaVersion is the last script that only creates tables.
	SchemaVersion = "0001"
)

var scriptFileRe = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

type script struct {
	version string
	name    string
	body    string
}

// Apply runs every embedded script not yet recorded in the fixture_versions
// table, in version order.
func Apply(db *sql.DB) error {
	return ApplyUpTo(db, "")
}

// ApplyUpTo is Apply limited to scripts whose version is <= last. An empty
// last applies everything; SchemaVersion yields empty tables.
func ApplyUpTo(db *sql.DB, last string) error {
	if err := ensureVersionsTable(db); err != nil {
		return fmt.Errorf("ensure versions table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("list applied scripts: %w", err)
	}

	scripts, err := loadScripts()
	if err != nil {
		return err
	}

	for _, s := range scripts {
		if last != "" && s.version > last {
			break
		}
		if applied[s.version] {
			continue
		}
		if err := apply(db, s); err != nil {
			return fmt.Errorf("apply %s_%s.sql: %w", s.version, s.name, err)
		}
		slog.Debug("fixture applied", "version", s.version, "name", s.name)
	}

	return nil
}

// Script returns every embedded script concatenated in version order, for
// feeding to the sqlite3 command line shell.
func Script() (string, error) {
	scripts, err := loadScripts()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, s := range scripts {
		fmt.Fprintf(&b, "-- %s_%s\n", s.version, s.name)
		b.WriteString(s.body)
		if !strings.HasSuffix(s.body, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// Create writes a new store file at path with every script applied.
func Create(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("fixture db close", "error", closeErr)
		}
	}()
	return Apply(db)
}

func loadScripts() ([]script, error) {
	entries, err := fs.ReadDir(sqlFS, scriptsDir)
	if err != nil {
		return nil, fmt.Errorf("read scripts dir: %w", err)
	}

	var out []script
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, ok := parseScriptFilename(e.Name())
		if !ok {
			continue
		}
		body, err := fs.ReadFile(sqlFS, scriptsDir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read script %s: %w", e.Name(), err)
		}
		out = append(out, script{version: version, name: name, body: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func ensureVersionsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ` + tableName + ` (
			version    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)
	`)
	return err
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT version FROM " + tableName)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close fixture versions rows", "error", err)
		}
	}()
	out := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out[v] = true
	}
	return out, rows.Err()
}

func parseScriptFilename(filename string) (version, name string, ok bool) {
	m := scriptFileRe.FindStringSubmatch(filename)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

func apply(db *sql.DB, s script) error {
	if _, err := db.Exec(s.body); err != nil {
		return err
	}
	_, err := db.Exec(
		"INSERT INTO "+tableName+" (version, name) VALUES (?, ?)",
		s.version, s.name,
	)
	return err
}

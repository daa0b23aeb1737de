package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-extras/go-kit/must"
)

//go:embed migrations
var embedded embed.FS

var migrationsFS = must.Must(fs.Sub(embedded, "migrations"))

var migrationFileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.up\.sql$`)

const migrationsTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT NOT NULL PRIMARY KEY,
	description VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP NOT NULL
)`

type migration struct {
	Version     int
	Description string
	path        string
}

// loadMigrations возвращает миграции диалекта по возрастанию версии.
func loadMigrations(d Dialect) ([]migration, error) {
	dir, err := fs.Sub(migrationsFS, string(d))
	if err != nil {
		return nil, fmt.Errorf("migrations for %s: %w", d, err)
	}
	var out []migration
	seen := make(map[int]string)
	err = fs.WalkDir(dir, ".", func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		m := migrationFileName.FindStringSubmatch(e.Name())
		if m == nil {
			return nil
		}
		version, _ := strconv.Atoi(m[1])
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, path)
		}
		seen[version] = path
		out = append(out, migration{Version: version, Description: m[2], path: string(d) + "/" + path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan migrations: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// splitStatements режет скрипт по `;`. MySQL не выполняет несколько
// выражений за один Exec. В схемах нет `;` внутри литералов.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// CurrentVersion это последняя применённая миграция, 0 для пустой базы.
func (db *DB) CurrentVersion(ctx context.Context) (int, error) {
	r := db.run()
	if _, err := r.exec(ctx, migrationsTableSQL); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	var version int
	if err := r.queryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate применяет все недостающие миграции, каждую в своей транзакции.
func (db *DB) Migrate(ctx context.Context) error {
	current, err := db.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	migrations, err := loadMigrations(db.dialect)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		script, err := fs.ReadFile(migrationsFS, m.path)
		if err != nil {
			return fmt.Errorf("read migration %d: %w", m.Version, err)
		}
		db.logger.Info("applying migration", "version", m.Version, "description", m.Description)
		err = db.WithTx(ctx, func(r runner) error {
			for _, stmt := range splitStatements(string(script)) {
				if _, err := r.exec(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d: %w\nSQL: %s", m.Version, err, stmt)
				}
			}
			_, err := r.exec(ctx, "INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
				m.Version, m.Description, now())
			return err
		})
		if err != nil {
			return err
		}
		applied++
	}
	db.logger.Info("migrations up to date", "applied", applied, "total", len(migrations))
	return nil
}

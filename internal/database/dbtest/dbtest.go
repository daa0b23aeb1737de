// Package dbtest открывает для тестов SQLite в памяти с применёнными миграциями.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"blogsphere/internal/database"
)

var seq atomic.Int64

// New возвращает новую базу и её соединение. Каждый вызов получает свою
// базу в памяти, она закрывается по окончании теста.
func New(t testing.TB) (*database.DB, *sql.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:blogtest%d?mode=memory&cache=shared&_foreign_keys=on", seq.Add(1))
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// одно соединение: иначе каждое получает свою пустую базу
	conn.SetMaxOpenConns(1)
	db := database.New(conn, database.SQLite, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, conn
}

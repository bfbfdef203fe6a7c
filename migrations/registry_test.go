package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"
)

func TestForDialect_ResolvesCredentialSchema(t *testing.T) {
	want := []string{
		"00001_appnigma_connection_credentials",
		"00002_appnigma_credentials_expiry_index",
	}
	cases := map[string]string{
		DialectPostgres: "data/sql/migrations",
		DialectSQLite:   "data/sql/migrations/sqlite",
		" SQLite ":      "data/sql/migrations/sqlite",
	}
	for dialect, path := range cases {
		set, err := ForDialect(dialect)
		if err != nil {
			t.Fatalf("%s: for dialect: %v", dialect, err)
		}
		if set.Path != path {
			t.Fatalf("%s: expected path %q, got %q", dialect, path, set.Path)
		}
		if diff := cmp.Diff(want, set.Versions); diff != "" {
			t.Fatalf("%s: versions mismatch (-want +got):\n%s", dialect, diff)
		}
		for _, version := range set.Versions {
			for _, suffix := range []string{".up.sql", ".down.sql"} {
				content, err := fs.ReadFile(set.FS, version+suffix)
				if err != nil {
					t.Fatalf("%s: read %s%s: %v", dialect, version, suffix, err)
				}
				if strings.TrimSpace(string(content)) == "" {
					t.Fatalf("%s: expected %s%s to have SQL content", dialect, version, suffix)
				}
			}
		}
	}
	if _, err := ForDialect("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}

func TestRegister_PassesDialectSet(t *testing.T) {
	var registered []string
	set, err := Register(context.Background(), DialectSQLite, func(_ context.Context, set Set) error {
		registered = append(registered, set.Dialect)
		return nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(registered) != 1 || registered[0] != DialectSQLite || set.Dialect != DialectSQLite {
		t.Fatalf("expected a single sqlite registration, got %v", registered)
	}

	boom := errors.New("boom")
	if _, err := Register(context.Background(), DialectPostgres, func(context.Context, Set) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected register error to be wrapped, got %v", err)
	}
	if _, err := Register(context.Background(), DialectSQLite, nil); err == nil {
		t.Fatalf("expected missing register function error")
	}
}

func TestPairedVersions_RequiresRollbacks(t *testing.T) {
	complete := fstest.MapFS{
		"00002_b.up.sql":   {Data: []byte("SELECT 1;")},
		"00002_b.down.sql": {Data: []byte("SELECT 1;")},
		"00001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"00001_a.down.sql": {Data: []byte("SELECT 1;")},
	}
	versions, err := pairedVersions(complete)
	if err != nil {
		t.Fatalf("paired versions: %v", err)
	}
	if diff := cmp.Diff([]string{"00001_a", "00002_b"}, versions); diff != "" {
		t.Fatalf("versions mismatch (-want +got):\n%s", diff)
	}

	missingDown := fstest.MapFS{"00001_a.up.sql": {Data: []byte("SELECT 1;")}}
	if _, err := pairedVersions(missingDown); err == nil {
		t.Fatalf("expected missing down migration error")
	}
	missingUp := fstest.MapFS{
		"00001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"00001_a.down.sql": {Data: []byte("SELECT 1;")},
		"00002_b.down.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := pairedVersions(missingUp); err == nil {
		t.Fatalf("expected orphan down migration error")
	}
	if _, err := pairedVersions(fstest.MapFS{}); err == nil {
		t.Fatalf("expected empty filesystem error")
	}
}

func TestSQLiteCredentialMigrations_ApplyAndRollback(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:migrations-credentials-%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	set, err := ForDialect(DialectSQLite)
	if err != nil {
		t.Fatalf("for dialect: %v", err)
	}
	for _, version := range set.Versions {
		if err := execSQLMigration(ctx, db, set.FS, version+".up.sql"); err != nil {
			t.Fatalf("apply %s: %v", version, err)
		}
	}

	insert := `
		INSERT INTO appnigma_connection_credentials (
			id,
			connection_id,
			encrypted_payload,
			payload_format,
			payload_version
		) VALUES (?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, insert, "row-1", "conn_1", []byte("sealed"), "connection_credentials_json", 1); err != nil {
		t.Fatalf("insert first row: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "row-2", "conn_1", []byte("sealed"), "connection_credentials_json", 1); err == nil {
		t.Fatalf("expected unique connection_id violation")
	}

	for i := len(set.Versions) - 1; i >= 0; i-- {
		version := set.Versions[i]
		if err := execSQLMigration(ctx, db, set.FS, version+".down.sql"); err != nil {
			t.Fatalf("rollback %s: %v", version, err)
		}
	}

	var count int
	if err := db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		"appnigma_connection_credentials",
	).Scan(&count); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected table to be dropped after rollback")
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}

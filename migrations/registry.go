package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	integrations "github.com/appnigma/go-integrations-client"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	SourceLabel = "appnigma-integrations-client"

	rootDir = "data/sql/migrations"
)

// Set is the credential cache schema for one dialect. Versions lists the
// migration base names in apply order; each has an up and a down file.
type Set struct {
	Dialect  string
	Path     string
	FS       fs.FS
	Versions []string
}

// RegisterFunc hands a dialect's migrations to the persistence layer.
type RegisterFunc func(ctx context.Context, set Set) error

// ForDialect resolves the embedded credential schema for dialect.
func ForDialect(dialect string) (Set, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	var path string
	switch dialect {
	case DialectPostgres:
		path = rootDir
	case DialectSQLite:
		path = rootDir + "/sqlite"
	default:
		return Set{}, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(integrations.GetMigrationsFS(), path)
	if err != nil {
		return Set{}, fmt.Errorf("migrations: resolve %s: %w", path, err)
	}
	versions, err := pairedVersions(sub)
	if err != nil {
		return Set{}, fmt.Errorf("migrations: %s: %w", dialect, err)
	}
	return Set{
		Dialect:  dialect,
		Path:     path,
		FS:       sub,
		Versions: versions,
	}, nil
}

// Register resolves the schema for dialect and passes it to registerFn.
func Register(ctx context.Context, dialect string, registerFn RegisterFunc) (Set, error) {
	if registerFn == nil {
		return Set{}, fmt.Errorf("migrations: register function is required")
	}
	set, err := ForDialect(dialect)
	if err != nil {
		return Set{}, err
	}
	if err := registerFn(ctx, set); err != nil {
		return set, fmt.Errorf("migrations: register %s (%s): %w", set.Dialect, set.Path, err)
	}
	return set, nil
}

func pairedVersions(fsys fs.FS) ([]string, error) {
	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	downs, err := fs.Glob(fsys, "*.down.sql")
	if err != nil {
		return nil, err
	}
	if len(ups) == 0 {
		return nil, fmt.Errorf("no *.up.sql files")
	}

	rollbacks := make(map[string]bool, len(downs))
	for _, name := range downs {
		rollbacks[strings.TrimSuffix(name, ".down.sql")] = true
	}
	versions := make([]string, 0, len(ups))
	for _, name := range ups {
		version := strings.TrimSuffix(name, ".up.sql")
		if !rollbacks[version] {
			return nil, fmt.Errorf("%s has no down migration", version)
		}
		delete(rollbacks, version)
		versions = append(versions, version)
	}
	for version := range rollbacks {
		return nil, fmt.Errorf("%s has no up migration", version)
	}
	sort.Strings(versions)
	return versions, nil
}

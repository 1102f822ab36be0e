package dialect

import (
	"context"
	"fmt"
	"net/url"

	"benritz/tosqlpp/internal/dialect/mssql"
	"benritz/tosqlpp/internal/dialect/mysql"
	"benritz/tosqlpp/internal/dialect/pgsql"
	"benritz/tosqlpp/internal/schema"
)

// Catalog returns a table's columns in declaration order, with types
// expressed in the MySQL vocabulary understood by the mapping package.
type Catalog interface {
	Columns(ctx context.Context, schemaName, table string) ([]schema.Column, error)
	Close() error
}

var (
	_ Catalog = (*mysql.Source)(nil)
	_ Catalog = (*pgsql.Source)(nil)
	_ Catalog = (*mssql.Source)(nil)
)

// Open connects to the catalog identified by the URL scheme.
func Open(ctx context.Context, sourceURL string) (Catalog, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	switch u.Scheme {
	case "mysql", "mariadb":
		cfg, err := mysql.ConfigFromURL(u)
		if err != nil {
			return nil, err
		}
		return mysql.NewSource(ctx, cfg)
	case "postgres", "postgresql":
		return pgsql.NewSource(ctx, sourceURL)
	case "sqlserver":
		return mssql.NewSource(ctx, sourceURL)
	case "":
		return nil, fmt.Errorf("source URL %q has no scheme", sourceURL)
	default:
		return nil, fmt.Errorf("unsupported source database: %s", u.Scheme)
	}
}

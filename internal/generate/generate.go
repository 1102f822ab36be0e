package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"benritz/tosqlpp/internal/dialect"
	"benritz/tosqlpp/internal/emit"
	"benritz/tosqlpp/internal/mapping"
)

var (
	ErrMissingTable  = errors.New("missing table name")
	ErrMissingSource = errors.New("missing source database connection URL")
	ErrTableNotFound = errors.New("table not found or has no columns")
)

// CatalogError wraps a failure to read the table's columns.
type CatalogError struct {
	Table string
	Err   error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("reading catalog for %s: %v", e.Table, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

type Generator struct {
	sourceURL  string
	schema     string
	table      string
	targetPath string
	namespace  string
	catalog    dialect.Catalog
	stdout     io.Writer
	logger     zerolog.Logger
}

type Option func(*Generator)

func New(opts ...Option) (*Generator, error) {
	g := Generator{
		namespace: emit.DefaultNamespace,
		stdout:    os.Stdout,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&g)
	}

	if g.table == "" {
		return nil, ErrMissingTable
	}
	if g.sourceURL == "" && g.catalog == nil {
		return nil, ErrMissingSource
	}

	return &g, nil
}

func WithSourceURL(u string) Option {
	return func(g *Generator) {
		g.sourceURL = u
	}
}

func WithSchema(s string) Option {
	return func(g *Generator) {
		g.schema = s
	}
}

func WithTable(t string) Option {
	return func(g *Generator) {
		g.table = t
	}
}

func WithTargetPath(p string) Option {
	return func(g *Generator) {
		g.targetPath = p
	}
}

func WithNamespace(ns string) Option {
	return func(g *Generator) {
		g.namespace = ns
	}
}

// WithCatalog uses an already open catalog instead of connecting to the
// source URL. The caller keeps ownership and must close it.
func WithCatalog(c dialect.Catalog) Option {
	return func(g *Generator) {
		g.catalog = c
	}
}

// WithStdout sets where the header is printed when no target path is given.
func WithStdout(w io.Writer) Option {
	return func(g *Generator) {
		g.stdout = w
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// Run reads the table's columns, renders the header and writes it out.
// Nothing is written unless every step succeeds.
func (g Generator) Run(ctx context.Context) error {
	catalog := g.catalog
	if catalog == nil {
		var err error
		catalog, err = dialect.Open(ctx, g.sourceURL)
		if err != nil {
			return &CatalogError{Table: g.table, Err: fmt.Errorf("failed to connect to source: %w", err)}
		}
		defer catalog.Close()
	}

	g.logger.Debug().Str("schema", g.schema).Str("table", g.table).Msg("reading columns")

	cols, err := catalog.Columns(ctx, g.schema, g.table)
	if err != nil {
		return &CatalogError{Table: g.table, Err: err}
	}
	if len(cols) == 0 {
		return &CatalogError{Table: g.table, Err: ErrTableNotFound}
	}

	g.logger.Debug().Str("table", g.table).Int("columns", len(cols)).Msg("columns read")

	table, err := mapping.Describe(g.table, cols)
	if err != nil {
		return err
	}

	text, err := emit.Render(table, emit.WithNamespace(g.namespace))
	if err != nil {
		return err
	}

	if g.targetPath == "" {
		_, err := fmt.Fprintln(g.stdout, text)
		return err
	}

	if err := writeFile(g.targetPath, text); err != nil {
		return fmt.Errorf("failed to write %s: %w", g.targetPath, err)
	}
	g.logger.Info().Str("table", g.table).Str("path", g.targetPath).Msg("done")
	return nil
}

// writeFile replaces path via a temp file in the same directory so a failed
// write never leaves a truncated header behind.
func writeFile(path, text string) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

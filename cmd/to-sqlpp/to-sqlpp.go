package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"benritz/tosqlpp/internal/config"
	"benritz/tosqlpp/internal/generate"
)

type flags struct {
	configPath string
	sourceURL  string
	schemaName string
	namespace  string
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "to-sqlpp <table> [output]",
		Short: "Generate sqlpp11 table definitions from a database table",
		Long: `Reads the column catalog of one table and writes a C++ header with
sqlpp11 column and table structs plus a <table>_to_json helper.
The header is printed to stdout unless an output file is given.`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Config file")
	cmd.Flags().StringVar(&f.sourceURL, "source", "", "Source database connection URL (mysql://, postgres:// or sqlserver://)")
	cmd.Flags().StringVar(&f.schemaName, "schema", "", "Schema containing the table (defaults to the connection's database)")
	cmd.Flags().StringVar(&f.namespace, "namespace", "", "C++ namespace for the generated structs (default models)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func run(cmd *cobra.Command, args []string, f flags, stdout, stderr io.Writer) error {
	level := zerolog.InfoLevel
	if f.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	opts := []generate.Option{
		generate.WithLogger(logger),
		generate.WithStdout(stdout),
	}

	if f.configPath != "" {
		cfg, err := config.LoadFile(f.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		opts = append(opts, cfg.Options()...)
	}

	if f.sourceURL != "" {
		opts = append(opts, generate.WithSourceURL(f.sourceURL))
	}
	if f.schemaName != "" {
		opts = append(opts, generate.WithSchema(f.schemaName))
	}
	if f.namespace != "" {
		opts = append(opts, generate.WithNamespace(f.namespace))
	}
	if len(args) > 0 {
		opts = append(opts, generate.WithTable(args[0]))
	}
	if len(args) > 1 {
		opts = append(opts, generate.WithTargetPath(args[1]))
	}

	g, err := generate.New(opts...)
	if err != nil {
		return err
	}

	return g.Run(cmd.Context())
}

func isUsageError(err error) bool {
	return errors.Is(err, generate.ErrMissingTable) || errors.Is(err, generate.ErrMissingSource)
}

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if isUsageError(err) {
			fmt.Fprintln(os.Stderr, cmd.UsageString())
			os.Exit(2)
		}
		os.Exit(1)
	}
}

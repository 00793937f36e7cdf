// Command nameparse parses one personal name per input line and writes one
// JSON record per line to stdout.
//
//	nameparse [flags] [file]
//
// With no file argument names are read from stdin. Parser and override
// settings use the same flags, NAMEPARSE_ environment variables and config
// file as the server.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/pflag"

	"nameparse/internal/config"
	"nameparse/internal/logging"
	"nameparse/internal/naming"
	"nameparse/internal/surnames"
)

var (
	// Version is set at build time via -ldflags "-X main.Version=...".
	Version = "dev"
	Commit  = "none"
)

const maxLineBytes = 1 << 20

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "nameparse: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("nameparse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "Print version and exit")
	withSalutation := fs.Bool("with-salutation", true, "Include the salutation when salutation words are configured")

	cfg, err := config.LoadFlags(fs, args)
	if err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintf(stdout, "nameparse %s (%s)\n", Version, Commit)
		return nil
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: stderr,
	})

	result := cfg.Validate()
	for _, warn := range result.Warnings {
		logger.Warn("configuration warning", slog.String("field", warn.Field), slog.String("message", warn.Message))
	}
	if result.HasErrors() {
		return fmt.Errorf("invalid configuration: %s", result.Error())
	}

	table, err := loadOverrides(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Debug("surname overrides loaded",
		slog.String("source", cfg.Overrides.Source),
		slog.Int("entries", table.Len()),
	)

	in := stdin
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}
	if path := fs.Arg(0); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	parser := naming.New(cfg.Parser, table)
	start := time.Now()
	stats, err := process(parser, in, stdout, *withSalutation)
	if err != nil {
		return err
	}
	logger.Info("names parsed",
		slog.Int("total", stats.Total),
		slog.Int("errors", stats.Errors),
		slog.Int("cleaned", stats.Cleaned),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// loadOverrides builds the surname table for the configured source.
func loadOverrides(ctx context.Context, cfg *config.Config) (*surnames.Table, error) {
	var source surnames.Source
	switch cfg.Overrides.Source {
	case "", config.OverridesSourceNone:
		source = surnames.EmptySource{}
	case config.OverridesSourceFile:
		source = surnames.FileSource{Path: cfg.Overrides.Path}
	case config.OverridesSourceDatabase:
		dsn, err := cfg.Database.DSN()
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open override database: %w", err)
		}
		defer db.Close()
		source = surnames.SQLSource{DB: db, Table: cfg.Overrides.Table, Column: cfg.Overrides.Column}
	default:
		return nil, fmt.Errorf("unknown overrides source %q", cfg.Overrides.Source)
	}

	if timeout := cfg.Database.ConnectionTimeout; timeout > 0 && cfg.Overrides.Source == config.OverridesSourceDatabase {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	table, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load surname overrides from %s: %w", source.Describe(), err)
	}
	return table, nil
}

// record is one output line. Components holds the text as it was matched;
// CasedComponents holds the same keys after casing.
type record struct {
	Line            int               `json:"line"`
	Input           string            `json:"input"`
	Type            string            `json:"type"`
	Number          int               `json:"number"`
	Error           bool              `json:"error"`
	Cleaned         bool              `json:"cleaned,omitempty"`
	NonMatching     string            `json:"non_matching,omitempty"`
	Issues          []string          `json:"issues,omitempty"`
	Components      map[string]string `json:"components"`
	CasedComponents map[string]string `json:"cased_components"`
	CasedName       string            `json:"cased_name"`
	Salutation      string            `json:"salutation,omitempty"`
}

type stats struct {
	Total   int
	Errors  int
	Cleaned int
}

// process parses each non-blank line of r and writes a JSON record per
// name to w. Line numbers count blank lines so records can be matched back
// to the input.
func process(parser *naming.Parser, r io.Reader, w io.Writer, withSalutation bool) (stats, error) {
	var st stats
	opts := parser.Options()
	salute := withSalutation && opts.Salutation != "" && opts.SalutationDefault != ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if isBlank(text) {
			continue
		}

		name := parser.Parse(text)
		props := name.Properties()
		rec := record{
			Line:            line,
			Input:           text,
			Type:            string(props.Type),
			Number:          props.Number,
			Error:           props.Error,
			Cleaned:         props.Cleaned,
			NonMatching:     props.NonMatching,
			Components:      name.Components().Map(),
			CasedComponents: name.CaseComponents().Map(),
			CasedName:       name.CaseAll(),
		}
		for _, issue := range name.Issues() {
			rec.Issues = append(rec.Issues, issue.String())
		}
		if salute {
			s, err := name.Salutation()
			if err != nil && !errors.Is(err, naming.ErrSalutationNotConfigured) {
				return st, err
			}
			rec.Salutation = s
		}

		st.Total++
		if props.Error {
			st.Errors++
		}
		if props.Cleaned {
			st.Cleaned++
		}
		if err := enc.Encode(rec); err != nil {
			return st, fmt.Errorf("write record %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return st, fmt.Errorf("read input: %w", err)
	}
	return st, bw.Flush()
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

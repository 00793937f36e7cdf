package serverapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"nameparse/internal/config"
	"nameparse/internal/logging"
	"nameparse/internal/naming"
	"nameparse/internal/observability"
	"nameparse/internal/surnames"
)

// parserStore holds the active parser. A reload loads a new override table
// and swaps in a parser built from it; requests already holding the old
// parser finish with it.
type parserStore struct {
	opts    naming.Options
	source  surnames.Source
	metrics *observability.ParseMetrics
	timeout time.Duration

	current atomic.Pointer[naming.Parser]
	size    atomic.Int64

	reloadMu sync.Mutex
}

func newParserStore(opts naming.Options, source surnames.Source, metrics *observability.ParseMetrics, timeout time.Duration) *parserStore {
	s := &parserStore{
		opts:    opts,
		source:  source,
		metrics: metrics,
		timeout: timeout,
	}
	s.current.Store(naming.New(opts, surnames.NewTable(nil)))
	return s
}

// Parser returns the active parser.
func (s *parserStore) Parser() *naming.Parser {
	return s.current.Load()
}

// Size returns the number of entries in the active override table.
func (s *parserStore) Size() int {
	return int(s.size.Load())
}

// Describe names the override source.
func (s *parserStore) Describe() string {
	return s.source.Describe()
}

// Reload loads the override table and swaps the active parser. On failure
// the previous parser stays active.
func (s *parserStore) Reload(ctx context.Context, logger *logging.Logger) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	table, err := s.source.Load(ctx)
	s.metrics.RecordOverrideLoad(ctx, s.source.Describe(), table.Len(), err)
	if err != nil {
		return 0, fmt.Errorf("failed to load surname overrides from %s: %w", s.source.Describe(), err)
	}

	s.current.Store(naming.New(s.opts, table))
	s.size.Store(int64(table.Len()))

	logger.Info("surname overrides loaded",
		slog.String("source", s.source.Describe()),
		slog.Int("entries", table.Len()),
		slog.Duration("duration", time.Since(start)),
	)
	return table.Len(), nil
}

// buildOverrideSource maps the overrides configuration onto a loader. db
// is only consulted for the database source.
func buildOverrideSource(cfg config.OverridesConfig, db *sql.DB) (surnames.Source, error) {
	switch cfg.Source {
	case config.OverridesSourceNone, "":
		return surnames.EmptySource{}, nil
	case config.OverridesSourceFile:
		return surnames.FileSource{Path: cfg.Path}, nil
	case config.OverridesSourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("database override source requires a database connection")
		}
		return surnames.SQLSource{DB: db, Table: cfg.Table, Column: cfg.Column}, nil
	default:
		return nil, fmt.Errorf("unknown override source %q", cfg.Source)
	}
}

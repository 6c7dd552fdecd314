package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/mulearn/dashboard/internal/logging"
)

// Options tunes a Service. Zero values fall back to DefaultOptions.
type Options struct {
	MaxConcurrentImports int
	ImportWait           time.Duration
	ImportTimeout        time.Duration
	DefaultPageSize      int
	MaxPageSize          int

	// Identity resolves the caller; defaults to ContextIdentity.
	Identity IdentityProvider
	// Now is the clock used for audit fields; defaults to UTC wall time.
	Now func() time.Time
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxConcurrentImports: DefaultMaxConcurrentImports,
		ImportWait:           DefaultMaxWaitTime,
		ImportTimeout:        5 * time.Minute,
		DefaultPageSize:      10,
		MaxPageSize:          100,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxConcurrentImports <= 0 {
		o.MaxConcurrentImports = d.MaxConcurrentImports
	}
	if o.ImportWait <= 0 {
		o.ImportWait = d.ImportWait
	}
	if o.ImportTimeout <= 0 {
		o.ImportTimeout = d.ImportTimeout
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = d.DefaultPageSize
	}
	if o.MaxPageSize < o.DefaultPageSize {
		o.MaxPageSize = max(d.MaxPageSize, o.DefaultPageSize)
	}
	if o.Identity == nil {
		o.Identity = ContextIdentity{}
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// Service provides the dashboard's business operations over a Store.
type Service struct {
	store    Store
	importer *Importer
	limiter  *ImportLimiter
	identity IdentityProvider
	opts     Options
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service backed by store.
func NewService(store Store, opts Options) *Service {
	opts = opts.withDefaults()

	importer := NewImporter(store, store)
	importer.Now = opts.Now

	return &Service{
		store:    store,
		importer: importer,
		limiter:  NewImportLimiter(opts.MaxConcurrentImports, opts.ImportWait),
		identity: opts.Identity,
		opts:     opts,
		now:      opts.Now,
		newID:    uuid.NewString,
	}
}

// Limiter exposes the import limiter for health reporting and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// ImportTasks parses an uploaded task list and imports it on behalf of the
// caller. It holds an import slot for the whole run and bounds the run by
// the configured import timeout.
func (s *Service) ImportTasks(ctx context.Context, filename string, r io.Reader) (ImportOutcome, error) {
	caller, err := s.identity.Current(ctx)
	if err != nil {
		return ImportOutcome{}, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ImportOutcome{}, err
	}
	defer s.limiter.Release()

	rows, err := ReadRows(filename, r)
	if err != nil {
		return ImportOutcome{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.ImportTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "file", filename)
	start := time.Now()

	out, err := s.importer.Import(ctx, rows, caller.UserID)
	if err != nil {
		log.Warn("task import stopped",
			"rows", len(rows),
			"accepted", len(out.Accepted),
			"rejected", len(out.Rejected),
			"error", err,
		)
		return out, fmt.Errorf("import %s: %w", filename, err)
	}

	log.Info("task import complete",
		"accepted", len(out.Accepted),
		"rejected", len(out.Rejected),
		"duration", time.Since(start),
	)
	return out, nil
}

func (s *Service) caller(ctx context.Context) (Identity, error) {
	return s.identity.Current(ctx)
}

func (s *Service) page(q PageQuery) PageQuery {
	return q.Normalize(s.opts.DefaultPageSize, s.opts.MaxPageSize)
}

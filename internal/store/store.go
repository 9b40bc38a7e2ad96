package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"github.com/atlekbai/tourney/internal/metrics"
	"github.com/atlekbai/tourney/internal/query"
)

// ErrNotFound is returned by Get when no row satisfies the plan.
var ErrNotFound = errors.New("record not found")

// Row is one result row keyed by projection alias.
type Row map[string]any

// Backend executes rendered SQL against a relational engine.
type Backend interface {
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)
	Count(ctx context.Context, sql string, args ...any) (int64, error)
	Placeholder() sq.PlaceholderFormat
}

// Page is one page of list results.
type Page struct {
	Results    []Row
	TotalCount *int64 // nil unless the plan asked for it
	Page       int
	PageSize   int
}

// Store executes query plans. Each execution is bounded by the query timeout
// and follows the caller's cancellation.
type Store struct {
	backend Backend
	timeout time.Duration
	log     *slog.Logger
}

func New(backend Backend, timeout time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{backend: backend, timeout: timeout, log: log}
}

// List runs a list plan. When the plan wants a total count it is computed
// concurrently with the page.
func (s *Store) List(ctx context.Context, plan *query.Plan) (*Page, error) {
	if plan.Kind() != query.KindList {
		return nil, fmt.Errorf("list: got %s plan", plan.Kind())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var total *int64
	if plan.WantCount() {
		g.Go(func() error {
			n, err := s.count(gctx, plan)
			if err != nil {
				return err
			}
			total = &n
			return nil
		})
	}

	var rows []Row
	g.Go(func() error {
		sqlStr, args, err := query.Render(plan, s.backend.Placeholder())
		if err != nil {
			return fmt.Errorf("render list: %w", err)
		}
		defer s.observe(plan, time.Now())
		rows, err = s.backend.Query(gctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("list %s: %w", plan.Entity(), err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if rows == nil {
		rows = []Row{}
	}
	return &Page{
		Results:    rows,
		TotalCount: total,
		Page:       plan.Page().Page,
		PageSize:   plan.Page().PageSize,
	}, nil
}

// Count returns the number of rows a list plan matches, ignoring paging.
func (s *Store) Count(ctx context.Context, plan *query.Plan) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.count(ctx, plan)
}

func (s *Store) count(ctx context.Context, plan *query.Plan) (int64, error) {
	sqlStr, args, err := query.RenderCount(plan, s.backend.Placeholder())
	if err != nil {
		return 0, fmt.Errorf("render count: %w", err)
	}
	start := time.Now()
	n, err := s.backend.Count(ctx, sqlStr, args...)
	metrics.QueryDuration.WithLabelValues(plan.Entity(), "count").Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", plan.Entity(), err)
	}
	return n, nil
}

// Get runs a single-item plan.
func (s *Store) Get(ctx context.Context, plan *query.Plan) (Row, error) {
	if plan.Kind() != query.KindSingle {
		return nil, fmt.Errorf("get: got %s plan", plan.Kind())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sqlStr, args, err := query.Render(plan, s.backend.Placeholder())
	if err != nil {
		return nil, fmt.Errorf("render single: %w", err)
	}

	defer s.observe(plan, time.Now())
	rows, err := s.backend.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", plan.Entity(), err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) observe(plan *query.Plan, start time.Time) {
	elapsed := time.Since(start)
	metrics.QueryDuration.WithLabelValues(plan.Entity(), string(plan.Kind())).Observe(elapsed.Seconds())
	s.log.Debug("query executed",
		"entity", plan.Entity(),
		"kind", string(plan.Kind()),
		"duration", elapsed)
}

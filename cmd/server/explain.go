package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"

	"github.com/atlekbai/tourney/internal/catalog"
	"github.com/atlekbai/tourney/internal/query"
)

type explainOptions struct {
	entity   string
	shape    string
	filters  []string
	sort     string
	page     string
	pageSize string
	count    bool
	id       string
	dialect  string
}

func newExplainCmd() *cobra.Command {
	var opts explainOptions

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the SQL a list or single-item request compiles to",
		Example: `  tourney explain --entity user --shape BASE --filter country=HR --sort username:asc
  tourney explain --entity user --id 6f1c... --shape MINI`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.entity, "entity", "", "entity name")
	f.StringVar(&opts.shape, "shape", "", "response shape")
	f.StringArrayVar(&opts.filters, "filter", nil, "filter as key=value, repeatable")
	f.StringVar(&opts.sort, "sort", "", "sort as key[:asc|desc]")
	f.StringVar(&opts.page, "page", "", "page number (1-indexed)")
	f.StringVar(&opts.pageSize, "page-size", "", "page size")
	f.BoolVar(&opts.count, "count", false, "also print the total-count query")
	f.StringVar(&opts.id, "id", "", "build a single-item query for this id")
	f.StringVar(&opts.dialect, "dialect", "postgres", "placeholder dialect: postgres or sqlite")
	cmd.MarkFlagRequired("entity")

	return cmd
}

func runExplain(cmd *cobra.Command, opts explainOptions) error {
	registry, err := catalog.New()
	if err != nil {
		return err
	}
	e := registry.Get(opts.entity)
	if e == nil {
		return fmt.Errorf("unknown entity %q, have %s", opts.entity, strings.Join(registry.Names(), ", "))
	}

	ph := sq.PlaceholderFormat(sq.Dollar)
	if opts.dialect == "sqlite" {
		ph = sq.Question
	}

	assembler := query.NewAssembler()
	out := cmd.OutOrStdout()

	if opts.id != "" {
		plan, err := assembler.BuildSingle(e, opts.id, opts.shape)
		if err != nil {
			return err
		}
		return printSQL(out, "single", plan, ph, query.Render)
	}

	values := url.Values{}
	if opts.shape != "" {
		values.Set("responseType", opts.shape)
	}
	for _, kv := range opts.filters {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid filter %q, expected key=value", kv)
		}
		values.Set(key, value)
	}
	if opts.sort != "" {
		key, dir, _ := strings.Cut(opts.sort, ":")
		values.Set("sort", key)
		if dir != "" {
			values.Set("order", dir)
		}
	}
	if opts.page != "" {
		values.Set("page", opts.page)
	}
	if opts.pageSize != "" {
		values.Set("pageSize", opts.pageSize)
	}
	if opts.count {
		values.Set("returnFullCount", "true")
	}

	params, err := query.ParseValues(e, values)
	if err != nil {
		return err
	}
	plan, err := assembler.BuildList(e, params)
	if err != nil {
		return err
	}

	for _, d := range plan.Dropped() {
		fmt.Fprintf(out, "-- ignored filter %s (%s)\n", d.Key, d.Reason)
	}
	if err := printSQL(out, "list", plan, ph, query.Render); err != nil {
		return err
	}
	if plan.WantCount() {
		return printSQL(out, "count", plan, ph, query.RenderCount)
	}
	return nil
}

type renderFunc func(*query.Plan, sq.PlaceholderFormat) (string, []any, error)

func printSQL(out io.Writer, label string, plan *query.Plan, ph sq.PlaceholderFormat, render renderFunc) error {
	sqlStr, args, err := render(plan, ph)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "-- %s\n%s;\n", label, sqlStr)
	if len(args) > 0 {
		fmt.Fprintf(out, "-- args: %v\n", args)
	}
	return nil
}

package query

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Engine executes filtered list and count queries against a relational store.
type Engine struct {
	db      *sqlx.DB
	observe func(label string, duration time.Duration)
}

// New constructs an engine over the given database handle.
func New(db *sqlx.DB) *Engine {
	return &Engine{db: db}
}

// WithObserver attaches a query timing callback (prometheus instrumentation).
func (e *Engine) WithObserver(fn func(label string, duration time.Duration)) *Engine {
	e.observe = fn
	return e
}

// List executes the filtered, sorted, paginated select into dest.
func (e *Engine) List(ctx context.Context, t Table, p Params, dest any) error {
	merged := mergeDefaults(t.Spec, p.Filters)

	builder := squirrel.Select(t.Columns...).
		From(t.Name).
		PlaceholderFormat(squirrel.Dollar)

	if conj := conjoin(t, merged); len(conj) > 0 {
		builder = builder.Where(conj)
	}

	if column, ok := t.Sorts[p.SortBy]; ok {
		builder = builder.OrderBy(column + " " + direction(p.SortOrder))
	}
	if p.Offset > 0 {
		builder = builder.Offset(p.Offset)
	}
	if p.Limit > 0 {
		builder = builder.Limit(p.Limit)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build list query for %s: %w", t.Name, err)
	}

	start := time.Now()
	if err := e.db.SelectContext(ctx, dest, sql, args...); err != nil {
		return fmt.Errorf("list %s: %w", t.Name, err)
	}
	if e.observe != nil {
		e.observe("list_"+t.Name, time.Since(start))
	}
	return nil
}

// Count executes the count-only path over the same filtered set. Sort and
// pagination never apply here.
func (e *Engine) Count(ctx context.Context, t Table, filters Filters) (int, error) {
	merged := mergeDefaults(t.Spec, filters)

	builder := squirrel.Select("COUNT(*)").
		From(t.Name).
		PlaceholderFormat(squirrel.Dollar)

	if conj := conjoin(t, merged); len(conj) > 0 {
		builder = builder.Where(conj)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query for %s: %w", t.Name, err)
	}

	start := time.Now()
	var total int
	if err := e.db.GetContext(ctx, &total, sql, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.Name, err)
	}
	if e.observe != nil {
		e.observe("count_"+t.Name, time.Since(start))
	}
	return total, nil
}

// mergeDefaults inserts declared defaults for keys absent from the caller
// map. Present keys always win, whatever their value.
func mergeDefaults(spec Spec, filters Filters) Filters {
	merged := Filters(filters).Clone()
	if merged == nil {
		merged = Filters{}
	}
	for name, field := range spec {
		if !field.HasDefault {
			continue
		}
		if _, present := merged[name]; !present {
			merged[name] = field.Default
		}
	}
	return merged
}

// conjoin partitions the merged filter set into direct predicates and hook
// input, then ANDs everything. Fields are visited in name order so generated
// SQL is stable.
func conjoin(t Table, merged Filters) squirrel.And {
	names := make([]string, 0, len(t.Spec))
	for name := range t.Spec {
		names = append(names, name)
	}
	sort.Strings(names)

	conj := squirrel.And{}
	ignored := Filters{}

	for _, name := range names {
		field := t.Spec[name]
		value, present := merged[name]
		if !present {
			continue
		}

		if field.DependsOn != "" {
			if dep, ok := merged[field.DependsOn]; ok && dep != nil {
				continue
			}
		}

		if field.Ignore {
			ignored[name] = value
			continue
		}

		switch field.Op {
		case OpExact:
			conj = append(conj, squirrel.Eq{field.Column: value})
		case OpILike:
			if value == nil {
				continue
			}
			conj = append(conj, squirrel.ILike{field.Column: "%" + fmt.Sprintf("%v", value) + "%"})
		case OpCustom:
			if field.Custom == nil {
				continue
			}
			if pred := field.Custom(field.Column, value); pred != nil {
				conj = append(conj, pred)
			}
		}
	}

	if t.Hook != nil && len(ignored) > 0 {
		if pred := t.Hook(ignored); pred != nil {
			conj = append(conj, pred)
		}
	}

	return conj
}

func direction(raw string) string {
	if strings.EqualFold(raw, "desc") {
		return "DESC"
	}
	return "ASC"
}

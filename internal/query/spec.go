// Package query implements the filtered list/count engine shared by every
// entity listing. Each entity declares a static Table describing how raw
// filter input maps to SQL predicates; the engine merges declared defaults,
// resolves field dependencies, routes ignored fields to the entity hook and
// executes the resulting query.
package query

import (
	"github.com/Masterminds/squirrel"
)

// OpKind selects how a filter field turns into a column predicate.
type OpKind int

const (
	// OpExact compares the column for equality. A present nil value becomes
	// an IS NULL predicate.
	OpExact OpKind = iota
	// OpILike performs a case-insensitive substring match.
	OpILike
	// OpCustom delegates predicate construction to the field's Custom func.
	OpCustom
)

// CustomFunc builds a predicate for a field the stock operators cannot
// express. Returning nil contributes no predicate.
type CustomFunc func(column string, value any) squirrel.Sqlizer

// Field describes one entry of an entity filter specification.
type Field struct {
	Column string
	Op     OpKind
	Custom CustomFunc

	// DependsOn suppresses this field whenever the named field is present
	// and non-nil in the merged filter set.
	DependsOn string

	// Ignore keeps the field out of direct predicates; its value is handed
	// to the table hook instead.
	Ignore bool

	// Default is inserted for absent keys only. HasDefault distinguishes a
	// declared nil default from no default at all.
	Default    any
	HasDefault bool
}

// Exact declares an equality field.
func Exact(column string) Field {
	return Field{Column: column, Op: OpExact}
}

// ILike declares a case-insensitive substring field.
func ILike(column string) Field {
	return Field{Column: column, Op: OpILike}
}

// Custom declares a field with a caller-supplied predicate builder.
func Custom(column string, fn CustomFunc) Field {
	return Field{Column: column, Op: OpCustom, Custom: fn}
}

// Ignored declares a field that only feeds the table hook.
func Ignored() Field {
	return Field{Ignore: true}
}

// WithDefault attaches a default value applied when the key is absent.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	f.HasDefault = true
	return f
}

// DependentOn marks the field as mutually exclusive with another field.
func (f Field) DependentOn(name string) Field {
	f.DependsOn = name
	return f
}

// Spec maps filter field names to their descriptors.
type Spec map[string]Field

// Filters is the caller-supplied filter map. Key presence is the optionality
// sentinel: an explicit false, zero or nil value is present and is never
// replaced by a default.
type Filters map[string]any

// Clone returns a shallow copy of the filter map.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Hook builds an entity-specific composite predicate from the ignored filter
// values. Returning nil contributes no predicate.
type Hook func(ignored Filters) squirrel.Sqlizer

// Table is the static per-entity filter specification consumed by handlers
// and repositories.
type Table struct {
	Name    string
	Columns []string
	Spec    Spec

	// Sorts whitelists sortable columns by request name. Unknown sort names
	// are silently ignored.
	Sorts map[string]string

	Hook Hook
}

// Params carries the runtime listing arguments.
type Params struct {
	Filters   Filters
	SortBy    string
	SortOrder string
	Limit     uint64
	Offset    uint64
}

// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package query

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyProjection is reported when a projection selects no columns.
	ErrEmptyProjection = errors.New("empty projection")
	// ErrNoAggregates is reported when a group by carries no aggregate columns.
	ErrNoAggregates = errors.New("group by without aggregates")
	// ErrNoTable is reported when a relation has no table or parent relation.
	ErrNoTable = errors.New("relation has no table")
	// ErrNoJoinCondition is reported when a join carries no conditions.
	ErrNoJoinCondition = errors.New("join without conditions")
)

type joinClause struct {
	kind  string
	right *Relation
	on    []Cond
}

// Relation is a deferred relational expression. Every operation returns a
// new relation and leaves the receiver untouched, so intermediate
// expressions can be reused across several derivations.
type Relation struct {
	from      *Relation
	database  string
	table     string
	alias     string
	filters   []Cond
	mutations []Column
	groupKeys []Expr
	aggs      []Column
	join      *joinClause
	projected bool
	columns   []Expr
}

// Table returns the root relation for a warehouse table.
func Table(database, name string) *Relation {
	return &Relation{database: database, table: name}
}

// Named gives the relation an explicit alias, used when the relation
// becomes a sub-select in a join. Unnamed relations receive a generated
// alias at render time.
func (r *Relation) Named(alias string) *Relation {
	out := r.clone()
	out.alias = alias
	return out
}

// Col returns a reference to a column of the relation.
func (r *Relation) Col(name string) Expr {
	return &colRef{rel: r, name: name}
}

// Filter keeps only the rows satisfying all conditions.
func (r *Relation) Filter(conds ...Cond) *Relation {
	if r.terminal() {
		return r.derived().Filter(conds...)
	}
	out := r.clone()
	out.filters = append(out.filters, conds...)
	return out
}

// Mutate adds derived columns to the relation. Their aliases can be
// referenced by later group keys and projections.
func (r *Relation) Mutate(cols ...Column) *Relation {
	if r.terminal() {
		return r.derived().Mutate(cols...)
	}
	out := r.clone()
	out.mutations = append(out.mutations, cols...)
	return out
}

// Grouping is the intermediate state between GroupBy and Aggregate.
type Grouping struct {
	rel  *Relation
	keys []Expr
}

// GroupBy starts a group/aggregate step over the given key expressions.
func (r *Relation) GroupBy(keys ...Expr) *Grouping {
	rel := r
	if r.terminal() {
		rel = r.derived()
	}
	return &Grouping{rel: rel.clone(), keys: keys}
}

// Aggregate closes the group step, producing a relation whose columns are
// the group keys followed by the aggregates.
func (g *Grouping) Aggregate(aggs ...Column) *Relation {
	out := g.rel.clone()
	out.groupKeys = g.keys
	out.aggs = aggs
	return out
}

// LeftJoin joins the relation with right, keeping unmatched left rows.
func (r *Relation) LeftJoin(right *Relation, on ...Cond) *Relation {
	return &Relation{
		from: r,
		join: &joinClause{kind: "LEFT", right: right, on: on},
	}
}

// Select sets the final projection of the relation.
func (r *Relation) Select(cols ...Expr) *Relation {
	if r.projected || (r.terminal() && r.join == nil) {
		return r.derived().Select(cols...)
	}
	out := r.clone()
	out.projected = true
	out.columns = cols
	return out
}

// SQL compiles the relation to a single SELECT statement.
func (r *Relation) SQL() (string, error) {
	return r.render(NewCtx())
}

func (r *Relation) clone() *Relation {
	out := *r
	out.filters = append([]Cond(nil), r.filters...)
	out.mutations = append([]Column(nil), r.mutations...)
	out.groupKeys = append([]Expr(nil), r.groupKeys...)
	out.aggs = append([]Column(nil), r.aggs...)
	out.columns = append([]Expr(nil), r.columns...)
	return &out
}

// derived wraps the relation as the source of a fresh one, turning it into
// a sub-select when rendered.
func (r *Relation) derived() *Relation {
	return &Relation{from: r}
}

// terminal reports whether further row-level operations must happen on a
// derived relation instead of being merged into this one.
func (r *Relation) terminal() bool {
	return r.aggs != nil || r.projected || r.join != nil
}

func (r *Relation) hasStages() bool {
	return len(r.filters) > 0 || len(r.mutations) > 0 || r.terminal()
}

func (r *Relation) qualifiedTable() string {
	if r.database == "" {
		return r.table
	}
	return r.database + "." + r.table
}

// mutationFor returns the derived column registered under alias, if any.
func (r *Relation) mutationFor(alias string) (Column, bool) {
	for _, col := range r.mutations {
		if col.Alias == alias {
			return col, true
		}
	}
	return Column{}, false
}

func (r *Relation) render(ctx *Ctx) (string, error) {
	var opts []Option
	if r.join != nil {
		opts = append(opts, OptQualifyColumns)
	}

	selectList, err := r.selectList(ctx, opts)
	if err != nil {
		return "", err
	}

	from, err := r.renderFrom(ctx)
	if err != nil {
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectList, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(from)

	if len(r.filters) > 0 {
		where, err := And(r.filters...).String(ctx, opts...)
		if err != nil {
			return "", err
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if r.aggs != nil {
		groupBy, err := r.renderGroupBy(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(" GROUP BY ")
		sb.WriteString(groupBy)
	}

	return sb.String(), nil
}

func (r *Relation) selectList(ctx *Ctx, opts []Option) ([]string, error) {
	switch {
	case r.projected:
		if len(r.columns) == 0 {
			return nil, ErrEmptyProjection
		}
		list := make([]string, len(r.columns))
		for i, col := range r.columns {
			str, err := col.String(ctx, opts...)
			if err != nil {
				return nil, err
			}
			list[i] = str
		}
		return list, nil

	case r.aggs != nil:
		if len(r.aggs) == 0 {
			return nil, ErrNoAggregates
		}
		list := make([]string, 0, len(r.groupKeys)+len(r.aggs))
		for _, key := range r.groupKeys {
			str, err := r.renderKey(ctx, key, opts)
			if err != nil {
				return nil, err
			}
			list = append(list, str)
		}
		for _, agg := range r.aggs {
			str, err := agg.String(ctx, opts...)
			if err != nil {
				return nil, err
			}
			list = append(list, str)
		}
		return list, nil

	default:
		list := []string{"*"}
		for _, col := range r.mutations {
			str, err := col.String(ctx, opts...)
			if err != nil {
				return nil, err
			}
			list = append(list, str)
		}
		return list, nil
	}
}

// renderKey renders a group key in the select list, expanding references
// to derived columns into their defining expression.
func (r *Relation) renderKey(ctx *Ctx, key Expr, opts []Option) (string, error) {
	if ref, ok := key.(*colRef); ok {
		if col, ok := r.mutationFor(ref.name); ok {
			return col.String(ctx, opts...)
		}
	}
	return key.String(ctx, opts...)
}

func (r *Relation) renderGroupBy(ctx *Ctx) (string, error) {
	keys := make([]string, len(r.groupKeys))
	for i, key := range r.groupKeys {
		if ref, ok := key.(*colRef); ok {
			keys[i] = ref.name
			continue
		}
		str, err := key.String(ctx)
		if err != nil {
			return "", err
		}
		keys[i] = str
	}
	return strings.Join(keys, ", "), nil
}

func (r *Relation) renderFrom(ctx *Ctx) (string, error) {
	var base string
	switch {
	case r.table != "":
		base = r.qualifiedTable()
	case r.from != nil:
		source, err := r.from.renderSource(ctx)
		if err != nil {
			return "", err
		}
		base = source
	default:
		return "", ErrNoTable
	}

	if r.join == nil {
		return base, nil
	}

	if len(r.join.on) == 0 {
		return "", ErrNoJoinCondition
	}

	right, err := r.join.right.renderSource(ctx)
	if err != nil {
		return "", err
	}
	on, err := And(r.join.on...).String(ctx, OptQualifyColumns)
	if err != nil {
		return "", err
	}

	return base + " " + r.join.kind + " JOIN " + right + " ON " + on, nil
}

// renderSource renders the relation as the operand of a FROM or JOIN
// clause: a bare table reference when possible, a sub-select otherwise.
func (r *Relation) renderSource(ctx *Ctx) (string, error) {
	if r.table != "" && !r.hasStages() {
		return r.qualifiedTable() + " AS " + ctx.aliasFor(r), nil
	}
	sub, err := r.render(ctx)
	if err != nil {
		return "", err
	}
	return "(" + sub + ") AS " + ctx.aliasFor(r), nil
}

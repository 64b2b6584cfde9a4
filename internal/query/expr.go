// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Option alters how an expression is rendered.
type Option int

const (
	// OptQualifyColumns renders column references prefixed with the alias
	// of their owning relation. It is used when rendering join conditions
	// and projections over joined relations.
	OptQualifyColumns Option = iota + 1
)

func hasOption(opts []Option, opt Option) bool {
	for _, o := range opts {
		if o == opt {
			return true
		}
	}
	return false
}

// Ctx carries the state shared by a single rendering pass, namely the
// generated aliases for anonymous sub-relations.
type Ctx struct {
	id      int
	aliases map[*Relation]string
}

// NewCtx returns an empty rendering context.
func NewCtx() *Ctx {
	return &Ctx{aliases: map[*Relation]string{}}
}

// aliasFor returns the alias of rel, generating a stable one when the
// relation was never named explicitly.
func (c *Ctx) aliasFor(rel *Relation) string {
	if rel.alias != "" {
		return rel.alias
	}
	if alias, ok := c.aliases[rel]; ok {
		return alias
	}
	c.id++
	alias := "_t" + strconv.Itoa(c.id)
	c.aliases[rel] = alias
	return alias
}

// Expr is a scalar SQL expression.
type Expr interface {
	String(ctx *Ctx, opts ...Option) (string, error)
}

// colRef is a reference to a column of a relation. It renders as the bare
// column name, or as alias.name when qualification is requested.
type colRef struct {
	rel  *Relation
	name string
}

func (c *colRef) String(ctx *Ctx, opts ...Option) (string, error) {
	if hasOption(opts, OptQualifyColumns) {
		return ctx.aliasFor(c.rel) + "." + c.name, nil
	}
	return c.name, nil
}

// Column is an aliased select-list entry.
type Column struct {
	Alias string
	Expr  Expr
}

func (c Column) String(ctx *Ctx, opts ...Option) (string, error) {
	str, err := c.Expr.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	if c.Alias == "" {
		return str, nil
	}
	return str + " AS " + c.Alias, nil
}

// As names an expression for use in projections, mutations and aggregates.
func As(alias string, expr Expr) Column {
	return Column{Alias: alias, Expr: expr}
}

type rawExpr struct {
	val string
}

func (r *rawExpr) String(_ *Ctx, _ ...Option) (string, error) {
	return r.val, nil
}

// Raw wraps a verbatim SQL fragment as an expression.
func Raw(val string) Expr {
	return &rawExpr{val: val}
}

type stringVal struct {
	val string
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\000", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\b", `\b`,
	"\t", `\t`,
	"\x1a", `\x1a`,
	"'", `\'`,
)

func (s *stringVal) String(_ *Ctx, _ ...Option) (string, error) {
	return "'" + stringEscaper.Replace(s.val) + "'", nil
}

// Str returns a quoted and escaped string literal.
func Str(val string) Expr {
	return &stringVal{val: val}
}

type intVal struct {
	val int64
}

func (i *intVal) String(_ *Ctx, _ ...Option) (string, error) {
	return strconv.FormatInt(i.val, 10), nil
}

// Int returns an integer literal.
func Int(val int64) Expr {
	return &intVal{val: val}
}

type floatVal struct {
	val float64
}

func (f *floatVal) String(_ *Ctx, _ ...Option) (string, error) {
	return strconv.FormatFloat(f.val, 'f', -1, 64), nil
}

// Float returns a floating point literal.
func Float(val float64) Expr {
	return &floatVal{val: val}
}

type castExpr struct {
	expr Expr
	typ  string
}

func (c *castExpr) String(ctx *Ctx, opts ...Option) (string, error) {
	str, err := c.expr.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CAST(%s AS %s)", str, c.typ), nil
}

// Cast converts an expression to the given warehouse type.
func Cast(expr Expr, typ string) Expr {
	return &castExpr{expr: expr, typ: typ}
}

type funcExpr struct {
	fn   string
	args []Expr
}

func (f *funcExpr) String(ctx *Ctx, opts ...Option) (string, error) {
	args := make([]string, len(f.args))
	for i, arg := range f.args {
		str, err := arg.String(ctx, opts...)
		if err != nil {
			return "", err
		}
		args[i] = str
	}
	return f.fn + "(" + strings.Join(args, ", ") + ")", nil
}

// Fn builds a call to an arbitrary warehouse function.
func Fn(name string, args ...Expr) Expr {
	return &funcExpr{fn: name, args: args}
}

// Left returns the first n characters of a string expression.
func Left(expr Expr, n int) Expr {
	return Fn("left", expr, Int(int64(n)))
}

// Mean is the average aggregate over expr.
func Mean(expr Expr) Expr {
	return Fn("avg", expr)
}

// Sum is the sum aggregate over expr.
func Sum(expr Expr) Expr {
	return Fn("sum", expr)
}

// Count is the row count aggregate.
func Count() Expr {
	return Raw("count()")
}

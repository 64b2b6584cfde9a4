// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package query

import (
	"strings"
)

// Cond is a boolean SQL expression usable in filters and join conditions.
type Cond interface {
	Expr

	// Fn returns the operator name, used to merge consecutive filters of
	// the same logical operator into a single clause.
	Fn() string
}

type logicalOp struct {
	fn      string
	clauses []Cond
}

func (op *logicalOp) Fn() string {
	return op.fn
}

func (op *logicalOp) String(ctx *Ctx, opts ...Option) (string, error) {
	clauses := make([]string, len(op.clauses))
	for i, clause := range op.clauses {
		str, err := clause.String(ctx, opts...)
		if err != nil {
			return "", err
		}
		clauses[i] = "(" + str + ")"
	}
	return strings.Join(clauses, " "+op.fn+" "), nil
}

// And combines conditions with the AND operator.
func And(clauses ...Cond) Cond {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return &logicalOp{fn: "AND", clauses: clauses}
}

// Or combines conditions with the OR operator.
func Or(clauses ...Cond) Cond {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return &logicalOp{fn: "OR", clauses: clauses}
}

type binaryOp struct {
	fn    string
	left  Expr
	right Expr
}

func (op *binaryOp) Fn() string {
	return op.fn
}

func (op *binaryOp) String(ctx *Ctx, opts ...Option) (string, error) {
	left, err := op.left.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	right, err := op.right.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	return left + " " + op.fn + " " + right, nil
}

// Eq compares two expressions for equality.
func Eq(left, right Expr) Cond {
	return &binaryOp{fn: "=", left: left, right: right}
}

// Neq compares two expressions for inequality.
func Neq(left, right Expr) Cond {
	return &binaryOp{fn: "!=", left: left, right: right}
}

// Lt is the strict less-than comparison.
func Lt(left, right Expr) Cond {
	return &binaryOp{fn: "<", left: left, right: right}
}

// Le is the less-than-or-equal comparison.
func Le(left, right Expr) Cond {
	return &binaryOp{fn: "<=", left: left, right: right}
}

// Gt is the strict greater-than comparison.
func Gt(left, right Expr) Cond {
	return &binaryOp{fn: ">", left: left, right: right}
}

// Ge is the greater-than-or-equal comparison.
func Ge(left, right Expr) Cond {
	return &binaryOp{fn: ">=", left: left, right: right}
}

type notNull struct {
	expr Expr
}

func (n *notNull) Fn() string {
	return "IS NOT NULL"
}

func (n *notNull) String(ctx *Ctx, opts ...Option) (string, error) {
	str, err := n.expr.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	return str + " IS NOT NULL", nil
}

// NotNull filters out rows where expr is NULL.
func NotNull(expr Expr) Cond {
	return &notNull{expr: expr}
}

type not struct {
	cond Cond
}

func (n *not) Fn() string {
	return "NOT"
}

func (n *not) String(ctx *Ctx, opts ...Option) (string, error) {
	str, err := n.cond.String(ctx, opts...)
	if err != nil {
		return "", err
	}
	return "NOT (" + str + ")", nil
}

// Not negates a condition.
func Not(cond Cond) Cond {
	return &not{cond: cond}
}

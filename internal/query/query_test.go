// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationSQL(t *testing.T) {
	t.Parallel()

	orders := Table("shop", "orders")

	testCases := map[string]struct {
		relation    func() *Relation
		expectedSQL string
		expectedErr error
	}{
		"bare table": {
			relation: func() *Relation {
				return Table("shop", "orders")
			},
			expectedSQL: "SELECT * FROM shop.orders",
		},
		"filter and derived column": {
			relation: func() *Relation {
				return orders.
					Filter(NotNull(orders.Col("amount"))).
					Mutate(As("day", Left(Cast(orders.Col("created_at"), "String"), 10)))
			},
			expectedSQL: "SELECT *, left(CAST(created_at AS String), 10) AS day " +
				"FROM shop.orders WHERE amount IS NOT NULL",
		},
		"consecutive filters are merged with and": {
			relation: func() *Relation {
				return orders.
					Filter(Eq(orders.Col("status"), Str("ok"))).
					Filter(Gt(orders.Col("amount"), Int(10)))
			},
			expectedSQL: "SELECT * FROM shop.orders WHERE (status = 'ok') AND (amount > 10)",
		},
		"group by with aggregate": {
			relation: func() *Relation {
				return orders.
					Filter(NotNull(orders.Col("amount"))).
					Mutate(As("day", Left(Cast(orders.Col("created_at"), "String"), 10))).
					GroupBy(orders.Col("country"), orders.Col("day")).
					Aggregate(As("avg_amount", Mean(orders.Col("amount"))))
			},
			expectedSQL: "SELECT country, left(CAST(created_at AS String), 10) AS day, " +
				"avg(amount) AS avg_amount FROM shop.orders " +
				"WHERE amount IS NOT NULL GROUP BY country, day",
		},
		"left join of bare tables": {
			relation: func() *Relation {
				left := Table("shop", "orders").Named("o")
				right := Table("shop", "refunds").Named("r")
				return left.
					LeftJoin(right, Eq(left.Col("id"), right.Col("order_id"))).
					Select(left.Col("id"), right.Col("amount"))
			},
			expectedSQL: "SELECT o.id, r.amount FROM shop.orders AS o " +
				"LEFT JOIN shop.refunds AS r ON o.id = r.order_id",
		},
		"left join of aggregated relations": {
			relation: func() *Relation {
				left := Table("shop", "orders").
					GroupBy(orders.Col("country")).
					Aggregate(As("avg_amount", Mean(orders.Col("amount")))).
					Named("o")
				right := Table("shop", "refunds").
					GroupBy(orders.Col("country")).
					Aggregate(As("avg_refund", Mean(orders.Col("amount")))).
					Named("r")
				return left.
					LeftJoin(right, Eq(left.Col("country"), right.Col("country"))).
					Select(left.Col("country"), As("avg_order", left.Col("avg_amount")), right.Col("avg_refund"))
			},
			expectedSQL: "SELECT o.country, o.avg_amount AS avg_order, r.avg_refund FROM " +
				"(SELECT country, avg(amount) AS avg_amount FROM shop.orders GROUP BY country) AS o " +
				"LEFT JOIN (SELECT country, avg(amount) AS avg_refund FROM shop.refunds GROUP BY country) AS r " +
				"ON o.country = r.country",
		},
		"left join of unnamed relations uses generated aliases": {
			relation: func() *Relation {
				left := Table("shop", "orders").
					GroupBy(orders.Col("country")).
					Aggregate(As("avg_amount", Mean(orders.Col("amount"))))
				right := Table("shop", "refunds").
					GroupBy(orders.Col("country")).
					Aggregate(As("avg_amount", Mean(orders.Col("amount"))))
				return left.
					LeftJoin(right, Eq(left.Col("country"), right.Col("country"))).
					Select(left.Col("country"), left.Col("avg_amount"), right.Col("avg_amount"))
			},
			expectedSQL: "SELECT _t1.country, _t1.avg_amount, _t2.avg_amount FROM " +
				"(SELECT country, avg(amount) AS avg_amount FROM shop.orders GROUP BY country) AS _t1 " +
				"LEFT JOIN (SELECT country, avg(amount) AS avg_amount FROM shop.refunds GROUP BY country) AS _t2 " +
				"ON _t1.country = _t2.country",
		},
		"join without conditions": {
			relation: func() *Relation {
				left := Table("shop", "orders").Named("o")
				right := Table("shop", "refunds").Named("r")
				return left.
					LeftJoin(right).
					Select(left.Col("id"), right.Col("amount"))
			},
			expectedErr: ErrNoJoinCondition,
		},
		"empty projection": {
			relation: func() *Relation {
				left := Table("shop", "orders").Named("o")
				right := Table("shop", "refunds").Named("r")
				return left.
					LeftJoin(right, Eq(left.Col("id"), right.Col("order_id"))).
					Select()
			},
			expectedErr: ErrEmptyProjection,
		},
		"group by without aggregates": {
			relation: func() *Relation {
				return orders.GroupBy(orders.Col("country")).Aggregate()
			},
			expectedErr: ErrNoAggregates,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sql, err := testCase.relation().SQL()
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.expectedSQL, sql)
		})
	}
}

func TestRelationImmutability(t *testing.T) {
	t.Parallel()

	base := Table("shop", "orders")
	filtered := base.Filter(NotNull(base.Col("amount")))
	mutated := filtered.Mutate(As("day", Left(Cast(base.Col("created_at"), "String"), 10)))

	baseSQL, err := base.SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM shop.orders", baseSQL)

	filteredSQL, err := filtered.SQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM shop.orders WHERE amount IS NOT NULL", filteredSQL)

	mutatedSQL, err := mutated.SQL()
	require.NoError(t, err)
	assert.NotEqual(t, filteredSQL, mutatedSQL)
}

func TestStringLiteralEscaping(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		value    string
		expected string
	}{
		"plain":          {value: "italy", expected: "'italy'"},
		"single quote":   {value: "O'Brien", expected: `'O\'Brien'`},
		"backslash":      {value: `a\b`, expected: `'a\\b'`},
		"newline":        {value: "a\nb", expected: `'a\nb'`},
		"mixed controls": {value: "a\t'b", expected: `'a\t\'b'`},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			str, err := Str(testCase.value).String(NewCtx())
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, str)
		})
	}
}

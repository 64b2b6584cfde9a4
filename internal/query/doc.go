// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package query provides a deferred relational expression builder.
// Expressions are composed from tables, filters, derived columns,
// group/aggregate steps and joins, and are compiled to a single SQL
// SELECT statement executed by the warehouse. No expression performs
// I/O; rendering is pure and deterministic.
package query

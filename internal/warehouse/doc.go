// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package warehouse manages the connection towards the SQL warehouse that
// executes the compiled pipeline queries.
package warehouse

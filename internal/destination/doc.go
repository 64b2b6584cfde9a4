// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination contains the writers that persist pipeline results:
// CSV files declared in the catalog and the local stdout writer.
package destination

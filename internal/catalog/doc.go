// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package catalog loads the declarative data catalog: the named datasets
// that pipelines read from the warehouse and the local files they write.
package catalog

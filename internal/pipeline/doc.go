// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline provides the core building blocks to create and run
// data preprocessing pipelines.
// A pipeline is an ordered list of nodes; every node reads named input
// datasets, applies a relational transform and produces a named output
// dataset that is either persisted through a destination writer or kept
// in memory for downstream nodes.
package pipeline

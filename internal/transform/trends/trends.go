// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package trends contains the built-in pipeline that preprocesses the
// Google Trends datasets: both tables are averaged per country, month and
// term, then merged with a left join so every ranked term keeps its rising
// percent gain when one exists.
package trends

import (
	"fmt"

	"github.com/mia-platform/trendprep/internal/pipeline"
	"github.com/mia-platform/trendprep/internal/query"
)

const (
	// PipelineName is the registry name of the built-in pipeline.
	PipelineName = "trends"
	// NodeName identifies the single preprocessing node.
	NodeName = "preprocess_data"

	// TopTermsDataset is the catalog name of the trend rankings table.
	TopTermsDataset = "international_top_terms"
	// RisingTermsDataset is the catalog name of the rising trends table.
	RisingTermsDataset = "international_top_rising_terms"
	// OutputDataset is the catalog name of the preprocessed output.
	OutputDataset = "preprocessed_data"
)

// Pipeline wires the preprocessing node to its catalog datasets.
func Pipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(PipelineName,
		pipeline.Node{
			Name:      NodeName,
			Inputs:    []string{TopTermsDataset, RisingTermsDataset},
			Output:    OutputDataset,
			Transform: Transform,
		},
	)
}

// Transform builds the preprocessing expression. Each input is grouped by
// (country_name, month, term) with the month derived from the first seven
// characters of the week column; the grouped relations are merged with a
// three-key left join keeping every ranked term.
func Transform(inputs map[string]*query.Relation) (*query.Relation, error) {
	topTerms, ok := inputs[TopTermsDataset]
	if !ok {
		return nil, fmt.Errorf("missing input dataset %q", TopTermsDataset)
	}
	risingTerms, ok := inputs[RisingTermsDataset]
	if !ok {
		return nil, fmt.Errorf("missing input dataset %q", RisingTermsDataset)
	}

	trends := topTerms.
		Filter(query.NotNull(topTerms.Col("score"))).
		Mutate(query.As("month", monthOfWeek(topTerms))).
		GroupBy(topTerms.Col("country_name"), topTerms.Col("month"), topTerms.Col("term")).
		Aggregate(query.As("avg_score", query.Mean(topTerms.Col("score")))).
		Named("trends")

	rising := risingTerms.
		Mutate(query.As("month", monthOfWeek(risingTerms))).
		GroupBy(risingTerms.Col("country_name"), risingTerms.Col("month"), risingTerms.Col("term")).
		Aggregate(query.As("avg_percent_gain", query.Mean(risingTerms.Col("percent_gain")))).
		Named("rising")

	joined := trends.LeftJoin(rising,
		query.Eq(trends.Col("country_name"), rising.Col("country_name")),
		query.Eq(trends.Col("month"), rising.Col("month")),
		query.Eq(trends.Col("term"), rising.Col("term")),
	)

	return joined.Select(
		trends.Col("country_name"),
		trends.Col("month"),
		query.As("google_trend", trends.Col("term")),
		trends.Col("avg_score"),
		rising.Col("avg_percent_gain"),
	), nil
}

// monthOfWeek derives the YYYY-MM month from the week start date column.
func monthOfWeek(relation *query.Relation) query.Expr {
	return query.Left(query.Cast(relation.Col("week"), "String"), 7)
}

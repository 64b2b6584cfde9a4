// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"

	"github.com/mia-platform/trendprep/internal/warehouse"
)

// Writer persists the result rows of a pipeline node to a destination.
type Writer interface {
	// WriteRows drains rows and writes them to the destination together
	// with the column names. The rows are closed by the caller.
	WriteRows(ctx context.Context, columns []string, rows warehouse.Rows) error
}

package sheets

import "context"

// RowWriter replaces the content of a named tab with rows. The first row is
// the header.
type RowWriter interface {
	ReplaceRows(ctx context.Context, sheet string, rows [][]string) error
}

// Package merge reconciles a target table with a source table that holds the
// newer values.
package merge

import (
	"github.com/samber/lo"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// ReduceHeaders returns a copy of target restricted to the headers that also
// appear in source, ordered as they are in source. Headers only present in
// source are skipped. Neither table is modified.
func ReduceHeaders(target, source *table.Table) (*table.Table, error) {
	return reduceTo(target, source.Headers())
}

func reduceTo(target *table.Table, headers []string) (*table.Table, error) {
	out := target.Clone()
	out.FilterColumns(func(h string) bool { return lo.Contains(headers, h) })
	for _, h := range headers {
		if !out.HasHeader(h) {
			continue
		}
		if err := out.MoveColumn(h, ""); err != nil {
			return nil, err
		}
	}
	if len(out.Headers()) == 0 {
		return nil, table.EmptySchemaError{Message: "no columns left after reducing headers to match source"}
	}
	return out, nil
}

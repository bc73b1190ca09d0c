package merge

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// JoinOptions controls what Join may add to the target.
type JoinOptions struct {
	// AppendRows appends source rows whose key matches no target row.
	AppendRows bool
	// AppendColumns adds source headers missing from the target before
	// matching starts.
	AppendColumns bool
}

// Plan is the set of changes Join will make, computed before the target is
// touched.
type Plan struct {
	// NewColumns are added to the end of the target, in source order.
	NewColumns []string
	// Source is the source table narrowed to the widened target's headers.
	Source *table.Table
}

// PlanJoin validates a join and computes its schema changes without modifying
// either table.
func PlanJoin(target, source *table.Table, opts JoinOptions) (*Plan, error) {
	targetHeaders := target.Headers()
	var added []string
	if opts.AppendColumns {
		added = lo.Filter(source.Headers(), func(h string, _ int) bool {
			return !lo.Contains(targetHeaders, h)
		})
	}
	narrowed, err := reduceTo(source, append(targetHeaders, added...))
	if err != nil {
		return nil, err
	}
	return &Plan{NewColumns: added, Source: narrowed}, nil
}

// RequireKey checks that key is a header of both tables. Join itself reads a
// missing key as nil on every row, which makes every source row match the
// last target row.
func RequireKey(target, source *table.Table, key string) error {
	if err := target.Require(key); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := source.Require(key); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	return nil
}

// Join updates target in place from source, matching rows on key.
//
// For each source row, in order, the last target row whose key cell equals
// the source's is overwritten for every header both tables share. Earlier
// matches are left alone. Unmatched source rows are appended when
// opts.AppendRows is set, with every other target header set to nil, and
// dropped otherwise. Rows appended for earlier source rows take part in
// matching later ones.
//
// All validation happens before the first change, so a returned error means
// target is unmodified. Join returns target.
func Join(target, source *table.Table, key string, opts JoinOptions) (*table.Table, error) {
	plan, err := PlanJoin(target, source, opts)
	if err != nil {
		return nil, err
	}
	if err := Apply(target, plan, key, opts.AppendRows); err != nil {
		return nil, err
	}
	return target, nil
}

// Apply executes a plan produced by PlanJoin against target.
func Apply(target *table.Table, plan *Plan, key string, appendRows bool) error {
	for _, h := range plan.NewColumns {
		if err := target.InsertColumn(h, ""); err != nil {
			return err
		}
	}

	shared := plan.Source.Headers()
	// last row position per key value; kept current as rows are appended
	lastMatch := make(map[table.Key]int, target.Len())
	for i := 0; i < target.Len(); i++ {
		lastMatch[table.KeyOf(target.Get(i, key))] = i
	}

	var updated, appended, dropped int
	for _, row := range plan.Source.Rows() {
		k := table.KeyOf(row[key])
		if i, ok := lastMatch[k]; ok && table.Equal(target.Get(i, key), row[key]) {
			for _, h := range shared {
				if err := target.Set(i, h, row[h]); err != nil {
					return err
				}
			}
			updated++
			continue
		}
		if !appendRows {
			dropped++
			continue
		}
		if err := target.AppendRow(row); err != nil {
			return err
		}
		lastMatch[k] = target.Len() - 1
		appended++
	}

	slog.Debug("join applied",
		"key", key,
		"new_columns", len(plan.NewColumns),
		"updated", updated,
		"appended", appended,
		"dropped", dropped,
	)
	return nil
}

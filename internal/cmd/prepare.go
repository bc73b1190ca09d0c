package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/filter"
	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// prepOptions select and order input rows before a command's main operation.
type prepOptions struct {
	where    string
	maps     []string
	sortBy   []string
	sortDesc bool
}

func (p *prepOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.where, "where", "", "Keep only rows matching a jq expression, e.g. '.Grade != \"\"'")
	cmd.Flags().StringArrayVar(&p.maps, "map", nil, "Rewrite a column with a jq expression, COLUMN=EXPR; the row is the input and the cell is $value (repeatable)")
	cmd.Flags().StringSliceVar(&p.sortBy, "sort-by", nil, "Sort input rows by these columns before processing (first is primary)")
	cmd.Flags().BoolVar(&p.sortDesc, "sort-desc", false, "Sort input rows in descending order")
}

func (p *prepOptions) apply(ctx context.Context, t *table.Table) (*table.Table, error) {
	var err error
	if strings.TrimSpace(p.where) != "" {
		if t, err = filter.Where(ctx, t, p.where); err != nil {
			return nil, err
		}
	}
	for _, m := range p.maps {
		column, expr, ok := strings.Cut(m, "=")
		if !ok || strings.TrimSpace(column) == "" || strings.TrimSpace(expr) == "" {
			return nil, table.InvalidArgumentError{Message: fmt.Sprintf("invalid --map %q: want COLUMN=EXPR", m)}
		}
		if t, err = filter.MapColumn(ctx, t, strings.TrimSpace(column), expr); err != nil {
			return nil, err
		}
	}
	if len(p.sortBy) > 0 {
		if t, err = filter.Sort(t, p.sortBy, p.sortDesc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// loadPrepared reads the [file] argument and applies p to it.
func loadPrepared(ctx context.Context, args []string, p *prepOptions) (*table.Table, error) {
	t, err := readTableArg(ctx, args)
	if err != nil {
		return nil, err
	}
	return p.apply(ctx, t)
}

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/salmonumbrella/reshape-cli/internal/filter"
	"github.com/salmonumbrella/reshape-cli/internal/logging"
	"github.com/salmonumbrella/reshape-cli/internal/merge"
	"github.com/salmonumbrella/reshape-cli/internal/reshape"
	"github.com/salmonumbrella/reshape-cli/internal/table"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

// Runner executes pipeline files.
type Runner struct {
	// Stdin is read when a path is "-".
	Stdin io.Reader
	// InputFormat applies to every table read. A pipeline's input_format
	// overrides it for the main input.
	InputFormat tableio.Format
	// InferTypes turns on CSV type inference for every input. A pipeline's
	// infer_types adds it for the main input only.
	InferTypes bool
}

// Result is the final table of a run together with its run ID.
type Result struct {
	RunID string
	Table *table.Table
}

// Run loads the input table and applies every step in order.
func (r *Runner) Run(ctx context.Context, f *File) (*Result, error) {
	ctx, runID := logging.WithRun(ctx)
	logger := logging.FromContext(ctx)
	started := time.Now()

	inputFormat := r.InputFormat
	if f.InputFormat != "" {
		parsed, err := tableio.ParseFormat(f.InputFormat)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		inputFormat = parsed
	}
	t, err := r.read(f.Path(f.Input), inputFormat, r.InferTypes || f.InferTypes)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	logger.Debug("pipeline input loaded", "path", f.Input, "rows", t.Len(), "columns", len(t.Headers()))

	for i, step := range f.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := step.Name()
		t, err = r.apply(ctx, f, step, t)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		logger.Debug("pipeline step finished", "step", i+1, "op", name, "rows", t.Len(), "columns", len(t.Headers()))
	}

	logger.Debug("pipeline finished", "steps", len(f.Steps), "duration", time.Since(started))
	return &Result{RunID: runID, Table: t}, nil
}

func (r *Runner) apply(ctx context.Context, f *File, s Step, t *table.Table) (*table.Table, error) {
	switch {
	case s.Filter != "":
		return filter.Where(ctx, t, s.Filter)
	case s.MapColumn != nil:
		return filter.MapColumn(ctx, t, s.MapColumn.Name, s.MapColumn.Expr)
	case s.Sort != nil:
		return filter.Sort(t, s.Sort.By, s.Sort.Desc)
	case s.Pivot != nil:
		if err := t.Require(s.Pivot.Group, s.Pivot.Column, s.Pivot.Value); err != nil {
			return nil, err
		}
		return reshape.Pivot(t, s.Pivot.Group, s.Pivot.Column, s.Pivot.Value), nil
	case s.Unpivot != nil:
		return reshape.Unpivot(t, reshape.UnpivotOptions{
			Start:         s.Unpivot.Start,
			End:           s.Unpivot.End,
			OutputHeaders: s.Unpivot.OutputHeaders,
			Retain:        s.Unpivot.Retain,
		})
	case s.InsertColumns != nil:
		out := t.Clone()
		for _, name := range s.InsertColumns.Names {
			if err := out.InsertColumn(name, s.InsertColumns.Before); err != nil {
				return nil, err
			}
		}
		return out, nil
	case s.MoveColumns != nil:
		out := t.Clone()
		for _, name := range s.MoveColumns.Names {
			if err := out.MoveColumn(name, s.MoveColumns.Before); err != nil {
				return nil, err
			}
		}
		return out, nil
	case s.Join != nil:
		source, err := r.read(f.Path(s.Join.Source), r.InputFormat, r.InferTypes)
		if err != nil {
			return nil, err
		}
		if err := merge.RequireKey(t, source, s.Join.Key); err != nil {
			return nil, err
		}
		return merge.Join(t, source, s.Join.Key, merge.JoinOptions{
			AppendRows:    s.Join.AppendRows,
			AppendColumns: s.Join.AppendColumns,
		})
	case s.Reduce != nil:
		source, err := r.read(f.Path(s.Reduce.Source), r.InputFormat, r.InferTypes)
		if err != nil {
			return nil, err
		}
		return merge.ReduceHeaders(t, source)
	default:
		return nil, fmt.Errorf("no operation")
	}
}

func (r *Runner) read(path string, format tableio.Format, infer bool) (*table.Table, error) {
	return tableio.ReadFile(path, r.Stdin, tableio.ReadOptions{
		Format:     format,
		InferTypes: infer,
	})
}

// Package pipeline runs a YAML-described sequence of table operations: load
// one input table, apply each step in order, and hand the result to an
// output stage.
package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a parsed pipeline document.
type File struct {
	Input       string `yaml:"input"`
	InputFormat string `yaml:"input_format,omitempty"`
	InferTypes  bool   `yaml:"infer_types,omitempty"`
	Steps       []Step `yaml:"steps"`
	Output      Output `yaml:"output,omitempty"`

	// Dir is the directory relative paths resolve against.
	Dir string `yaml:"-"`
}

// Output describes how the final table is printed.
type Output struct {
	Format       string   `yaml:"format,omitempty"`
	Columns      []string `yaml:"columns,omitempty"`
	DisplayNames []string `yaml:"display_names,omitempty"`
	CellOrder    string   `yaml:"cell_order,omitempty"`
	RawHTML      bool     `yaml:"raw_html,omitempty"`
}

// Step is a single operation. Exactly one field is set.
type Step struct {
	Filter        string       `yaml:"filter,omitempty"`
	MapColumn     *MapStep     `yaml:"map_column,omitempty"`
	Sort          *SortStep    `yaml:"sort,omitempty"`
	Pivot         *PivotStep   `yaml:"pivot,omitempty"`
	Unpivot       *UnpivotStep `yaml:"unpivot,omitempty"`
	InsertColumns *ColumnsStep `yaml:"insert_columns,omitempty"`
	MoveColumns   *ColumnsStep `yaml:"move_columns,omitempty"`
	Join          *JoinStep    `yaml:"join,omitempty"`
	Reduce        *ReduceStep  `yaml:"reduce,omitempty"`
}

// MapStep rewrites one column with a jq expression. The row is the input
// and the current cell is $value.
type MapStep struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

type SortStep struct {
	By   []string `yaml:"by"`
	Desc bool     `yaml:"desc,omitempty"`
}

// UnmarshalYAML accepts a single column name or a list in place of by.
func (s *SortStep) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.By = []string{node.Value}
		return nil
	case yaml.MappingNode:
		var raw struct {
			By   yaml.Node `yaml:"by"`
			Desc bool      `yaml:"desc"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		by, err := stringList(&raw.By)
		if err != nil {
			return fmt.Errorf("sort.by: %w", err)
		}
		s.By, s.Desc = by, raw.Desc
		return nil
	default:
		return fmt.Errorf("line %d: sort must be a column name or a mapping", node.Line)
	}
}

type PivotStep struct {
	Group  string `yaml:"group"`
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
}

type UnpivotStep struct {
	Start         string   `yaml:"start,omitempty"`
	End           string   `yaml:"end,omitempty"`
	OutputHeaders []string `yaml:"output_headers,omitempty"`
	Retain        []string `yaml:"retain,omitempty"`
}

// ColumnsStep names columns to insert or move. Before is optional; without
// it columns go to the end in the listed order.
type ColumnsStep struct {
	Names  []string `yaml:"names"`
	Before string   `yaml:"before,omitempty"`
}

// UnmarshalYAML accepts either a bare list of names or a mapping.
func (c *ColumnsStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var raw struct {
			Names  yaml.Node `yaml:"names"`
			Before string    `yaml:"before"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		names, err := stringList(&raw.Names)
		if err != nil {
			return err
		}
		c.Names, c.Before = names, raw.Before
		return nil
	}
	names, err := stringList(node)
	if err != nil {
		return err
	}
	c.Names = names
	return nil
}

type JoinStep struct {
	Source        string `yaml:"source"`
	Key           string `yaml:"key"`
	AppendRows    bool   `yaml:"append_rows,omitempty"`
	AppendColumns bool   `yaml:"append_columns,omitempty"`
}

type ReduceStep struct {
	Source string `yaml:"source"`
}

// UnmarshalYAML accepts the source path directly.
func (r *ReduceStep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Source = node.Value
		return nil
	}
	var raw struct {
		Source string `yaml:"source"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	r.Source = raw.Source
	return nil
}

func stringList(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// Name returns the step's type, or "" when no operation is set.
func (s Step) Name() string {
	names := s.names()
	if len(names) != 1 {
		return ""
	}
	return names[0]
}

func (s Step) names() []string {
	var out []string
	if s.Filter != "" {
		out = append(out, "filter")
	}
	if s.MapColumn != nil {
		out = append(out, "map_column")
	}
	if s.Sort != nil {
		out = append(out, "sort")
	}
	if s.Pivot != nil {
		out = append(out, "pivot")
	}
	if s.Unpivot != nil {
		out = append(out, "unpivot")
	}
	if s.InsertColumns != nil {
		out = append(out, "insert_columns")
	}
	if s.MoveColumns != nil {
		out = append(out, "move_columns")
	}
	if s.Join != nil {
		out = append(out, "join")
	}
	if s.Reduce != nil {
		out = append(out, "reduce")
	}
	return out
}

// Parse decodes a pipeline document and validates its shape. dir is used to
// resolve relative paths.
func Parse(data []byte, dir string) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline: %w", err)
	}
	f.Dir = dir
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses the pipeline file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Validate checks the pieces that can be checked without reading any table.
func (f *File) Validate() error {
	if strings.TrimSpace(f.Input) == "" {
		return fmt.Errorf("pipeline input is required")
	}
	for i, s := range f.Steps {
		names := s.names()
		switch len(names) {
		case 0:
			return fmt.Errorf("step %d: no operation", i+1)
		case 1:
		default:
			return fmt.Errorf("step %d: more than one operation (%s)", i+1, strings.Join(names, ", "))
		}
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, names[0], err)
		}
	}
	return nil
}

func (s Step) validate() error {
	switch {
	case s.MapColumn != nil && (s.MapColumn.Name == "" || strings.TrimSpace(s.MapColumn.Expr) == ""):
		return fmt.Errorf("name and expr are required")
	case s.Sort != nil && len(s.Sort.By) == 0:
		return fmt.Errorf("by is required")
	case s.Pivot != nil && (s.Pivot.Group == "" || s.Pivot.Column == "" || s.Pivot.Value == ""):
		return fmt.Errorf("group, column and value are required")
	case s.InsertColumns != nil && len(s.InsertColumns.Names) == 0:
		return fmt.Errorf("at least one column is required")
	case s.MoveColumns != nil && len(s.MoveColumns.Names) == 0:
		return fmt.Errorf("at least one column is required")
	case s.Join != nil && (s.Join.Source == "" || s.Join.Key == ""):
		return fmt.Errorf("source and key are required")
	case s.Reduce != nil && s.Reduce.Source == "":
		return fmt.Errorf("source is required")
	}
	return nil
}

// Path resolves p against the pipeline directory. "-" and absolute paths
// are returned unchanged.
func (f *File) Path(p string) string {
	if p == "-" || filepath.IsAbs(p) || f.Dir == "" {
		return p
	}
	return filepath.Join(f.Dir, p)
}

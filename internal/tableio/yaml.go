package tableio

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// readYAML accepts a sequence of mappings or a sequence of sequences, the
// YAML forms of the JSON layouts readJSON understands.
func readYAML(r io.Reader) (*table.Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return &table.Table{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("parse yaml: expected a top-level sequence")
	}

	var records []*table.Record
	var values [][]any
	for _, item := range root.Content {
		switch item.Kind {
		case yaml.MappingNode:
			if values != nil {
				return nil, fmt.Errorf("parse yaml: cannot mix mappings and sequences")
			}
			rec := table.NewRecord()
			for i := 0; i+1 < len(item.Content); i += 2 {
				var v any
				if err := item.Content[i+1].Decode(&v); err != nil {
					return nil, fmt.Errorf("parse yaml line %d: %w", item.Content[i+1].Line, err)
				}
				if err := setFlattened(rec, item.Content[i].Value, v); err != nil {
					return nil, err
				}
			}
			records = append(records, rec)
		case yaml.SequenceNode:
			if records != nil {
				return nil, fmt.Errorf("parse yaml: cannot mix mappings and sequences")
			}
			for j, cell := range item.Content {
				if cell.Kind == yaml.MappingNode || cell.Kind == yaml.SequenceNode {
					return nil, fmt.Errorf("parse yaml line %d: element %d: nested values are not allowed in sequence rows", cell.Line, j+1)
				}
			}
			var line []any
			if err := item.Decode(&line); err != nil {
				return nil, fmt.Errorf("parse yaml line %d: %w", item.Line, err)
			}
			values = append(values, line)
		default:
			return nil, fmt.Errorf("parse yaml line %d: sequence items must be mappings or sequences", item.Line)
		}
	}

	if values != nil {
		return table.FromValues(values)
	}
	return table.FromRecords(records), nil
}

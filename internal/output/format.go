package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/itchyny/gojq"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/reshape-cli/internal/filter"
	"github.com/salmonumbrella/reshape-cli/internal/render"
	"github.com/salmonumbrella/reshape-cli/internal/table"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is an aligned plain-text grid for tables, key-value lines otherwise (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatNDJSON is newline-delimited JSON format.
	FormatNDJSON Format = "ndjson"
	// FormatTable is a boxed table.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
	// FormatCSV is comma-separated values, headers first.
	FormatCSV Format = "csv"
	// FormatHTML is an HTML table.
	FormatHTML Format = "html"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
// Returns error if the format is invalid.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON:
		return FormatNDJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	default:
		return "", errors.New("invalid --output format (expected text|table|json|ndjson|yaml|csv|html)")
	}
}

// IsStructured reports whether the format is machine-readable structured output.
func IsStructured(format Format) bool {
	switch format {
	case FormatJSON, FormatNDJSON, FormatYAML, FormatCSV:
		return true
	default:
		return false
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format. Tables get row-aware output
// in every format; other values are printed generically.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}
	if t, ok := data.(*table.Table); ok {
		return p.PrintTable(ctx, t)
	}

	switch p.format {
	case FormatJSON:
		return p.runQuery(ctx, data, true)
	case FormatNDJSON:
		return p.printNDJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatText, FormatTable:
		return p.printText(data)
	default:
		return fmt.Errorf("%s format requires a table", p.format)
	}
}

// PrintTable outputs t after applying --result-sort-by and --result-limit.
func (p *Printer) PrintTable(ctx context.Context, t *table.Table) error {
	t = ApplyAgentOptions(ctx, t)

	switch p.format {
	case FormatJSON:
		if QueryFromContext(ctx) != "" {
			return p.runQuery(ctx, filter.Rows(t), true)
		}
		raw, err := marshalRows(t)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = p.w.Write(buf.Bytes())
		return err
	case FormatNDJSON:
		if QueryFromContext(ctx) != "" {
			return p.runQuery(ctx, filter.Rows(t), false)
		}
		for _, rec := range t.Records() {
			raw, err := marshalRecord(rec)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(p.w, "%s\n", raw); err != nil {
				return err
			}
		}
		return nil
	case FormatYAML:
		return p.printYAML(rowsNode(t))
	case FormatCSV:
		return tableio.WriteCSV(p.w, t)
	case FormatHTML:
		out, err := render.HTMLTable(t, RenderFromContext(ctx))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, out)
		return err
	case FormatTable:
		return p.printBoxed(t)
	case FormatText:
		return p.printGrid(t)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

// runQuery encodes data as JSON, filtered through the jq query in the
// context when there is one. Without a query, pretty controls indentation.
func (p *Printer) runQuery(ctx context.Context, data interface{}, pretty bool) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)

	query := QueryFromContext(ctx)
	if query == "" {
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(data)
	}

	// Parse and run jq query
	parsed, err := gojq.Parse(query)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return fmt.Errorf("invalid --query: %w", err)
	}

	iter := code.RunWithContext(ctx, filter.Value(data))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("query error: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}

	return nil
}

// printNDJSON outputs a slice one element per line, anything else as one line.
func (p *Printer) printNDJSON(ctx context.Context, data interface{}) error {
	if QueryFromContext(ctx) != "" {
		return p.runQuery(ctx, data, false)
	}

	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		for i := 0; i < v.Len(); i++ {
			if err := enc.Encode(v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.Encode(data)
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printText outputs maps as sorted key-value pairs, slices one item per line
// and anything else directly.
func (p *Printer) printText(data interface{}) error {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, key := range keys {
			if _, err := fmt.Fprintf(p.w, "%s: %v\n", key.Interface(), v.MapIndex(key).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintln(p.w, v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, data)
		return err
	}
}

// printGrid writes an aligned, borderless grid.
func (p *Printer) printGrid(t *table.Table) error {
	w := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)

	for _, line := range t.Values() {
		for i, cell := range line {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, table.Text(cell))
		}
		fmt.Fprintln(w)
	}

	return w.Flush()
}

// printBoxed writes a bordered table.
func (p *Printer) printBoxed(t *table.Table) error {
	tw := tablewriter.NewWriter(p.w)
	tw.SetHeader(t.Headers())
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for _, line := range t.Values()[1:] {
		cells := make([]string, len(line))
		for i, cell := range line {
			cells[i] = table.Text(cell)
		}
		tw.Append(cells)
	}
	tw.Render()
	return nil
}

// marshalRows encodes t as a JSON array of objects whose keys follow the
// header order.
func marshalRows(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, rec := range t.Records() {
		if i > 0 {
			buf.WriteByte(',')
		}
		raw, err := marshalRecord(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalRecord(rec *table.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range rec.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalValue(k)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get(k)
		val, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// rowsNode builds a YAML sequence of mappings in header order.
func rowsNode(t *table.Table) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range t.Records() {
		m := &yaml.Node{Kind: yaml.MappingNode}
		rec.Each(func(k string, v any) {
			var val yaml.Node
			if err := val.Encode(v); err != nil {
				val = yaml.Node{Kind: yaml.ScalarNode, Value: table.Text(v)}
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &val)
		})
		seq.Content = append(seq.Content, m)
	}
	return seq
}

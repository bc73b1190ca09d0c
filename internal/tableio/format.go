// Package tableio reads tables from CSV, JSON, NDJSON and YAML and writes them
// back as CSV. Column order always follows the source document.
package tableio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// Format is an input document format.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
)

// ParseFormat converts a string to a Format. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatAuto, "":
		return FormatAuto, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatNDJSON, "jsonl":
		return FormatNDJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid input format %q (expected auto|csv|json|ndjson|yaml)", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// sniff guesses the format from the first non-space byte.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return FormatCSV
	}
	switch trimmed[0] {
	case '[':
		return FormatJSON
	case '{':
		return FormatNDJSON
	default:
		return FormatCSV
	}
}

// ReadOptions controls how a document is decoded.
type ReadOptions struct {
	Format Format
	// InferTypes turns CSV cells that look like numbers or booleans into
	// typed values and empty cells into nil.
	InferTypes bool
}

// Read decodes one table from r.
func Read(r io.Reader, opts ReadOptions) (*table.Table, error) {
	format := opts.Format
	if format == "" {
		format = FormatAuto
	}
	if format == FormatAuto {
		br := bufio.NewReader(r)
		peek, _ := br.Peek(512)
		format = sniff(peek)
		r = br
	}

	switch format {
	case FormatCSV:
		return readCSV(r, opts.InferTypes)
	case FormatJSON:
		return readJSON(r)
	case FormatNDJSON:
		return readNDJSON(r)
	case FormatYAML:
		return readYAML(r)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// ReadFile decodes the table stored at path. A path of "-" reads stdin.
// When opts.Format is auto the extension decides, then the content.
func ReadFile(path string, stdin io.Reader, opts ReadOptions) (*table.Table, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("empty input source")
	}
	if trimmed == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		t, err := Read(stdin, opts)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return t, nil
	}

	if opts.Format == "" || opts.Format == FormatAuto {
		opts.Format = FormatFromPath(trimmed)
	}
	file, err := os.Open(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", trimmed, err)
	}
	defer file.Close()

	t, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", trimmed, err)
	}
	return t, nil
}

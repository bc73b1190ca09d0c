package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

func readCSV(r io.Reader, infer bool) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var values [][]any
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line := make([]any, len(rec))
		for i, cell := range rec {
			if len(values) == 0 {
				line[i] = strings.TrimPrefix(cell, "\ufeff")
				continue
			}
			if infer {
				line[i] = inferCell(cell)
			} else {
				line[i] = cell
			}
		}
		values = append(values, line)
	}
	return table.FromValues(values)
}

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// leadingZero matches identifiers such as zip codes that must stay strings.
var leadingZero = regexp.MustCompile(`^[+-]?0\d`)

// inferCell types a raw CSV cell: numbers, true/false and empty become
// int64/float64, bool and nil. Anything else stays a string.
func inferCell(cell string) any {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if !numericRegex.MatchString(s) || leadingZero.MatchString(s) {
		return cell
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return cell
}

// WriteCSV writes t as CSV, headers first.
func WriteCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)
	for _, line := range t.Values() {
		rec := make([]string, len(line))
		for i, v := range line {
			rec[i] = table.Text(v)
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

package tableio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jeremywohl/flatten"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// readJSON accepts an array of objects (keyed records) or an array of arrays
// (rectangular values, headers first).
func readJSON(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("parse json: expected a top-level array")
	}

	var records []*table.Record
	var values [][]any
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		switch tok {
		case json.Delim('{'):
			if values != nil {
				return nil, fmt.Errorf("parse json: cannot mix objects and arrays")
			}
			rec, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		case json.Delim('['):
			if records != nil {
				return nil, fmt.Errorf("parse json: cannot mix objects and arrays")
			}
			line, err := decodeArray(dec, len(values)+1)
			if err != nil {
				return nil, err
			}
			values = append(values, line)
		default:
			return nil, fmt.Errorf("parse json: array elements must be objects or arrays")
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if values != nil {
		return table.FromValues(values)
	}
	return table.FromRecords(records), nil
}

// readNDJSON reads one object per line. Blank lines are skipped.
func readNDJSON(r io.Reader) (*table.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []*table.Record
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse ndjson line %d: %w", line, err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("parse ndjson line %d: expected an object", line)
		}
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("parse ndjson line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner scan: %w", err)
	}
	return table.FromRecords(records), nil
}

// decodeObject reads the members of an object whose '{' was already consumed.
// Nested objects and arrays are flattened into dotted keys.
func decodeObject(dec *json.Decoder) (*table.Record, error) {
	rec := table.NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: expected object key")
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if err := setFlattened(rec, key, normalize(raw)); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return rec, nil
}

// decodeArray reads the scalar elements of array number n whose '[' was
// already consumed.
func decodeArray(dec *json.Decoder, n int) ([]any, error) {
	var line []any
	for dec.More() {
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		switch raw.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("parse json: array %d element %d: nested values are not allowed in array rows", n, len(line)+1)
		}
		line = append(line, normalize(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return line, nil
}

// setFlattened stores v under key, expanding maps and slices into dotted keys
// in sorted order.
func setFlattened(rec *table.Record, key string, v any) error {
	switch v.(type) {
	case map[string]any, []any:
	default:
		rec.Set(key, v)
		return nil
	}
	flat, err := flatten.Flatten(map[string]any{key: v}, "", flatten.DotStyle)
	if err != nil {
		return fmt.Errorf("flatten %s: %w", key, err)
	}
	if len(flat) == 0 {
		rec.Set(key, nil)
		return nil
	}
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rec.Set(k, flat[k])
	}
	return nil
}

// normalize converts json.Number to int64 or float64 throughout v.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}

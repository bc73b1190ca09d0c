// Package table provides the in-memory relational table every reshape, merge
// and render operation consumes and produces.
//
// A Table has an ordered list of unique headers and an ordered list of rows.
// Each row maps every header to a scalar cell (string, number, bool or nil);
// a missing value is stored as an explicit nil, never as a missing key.
package table

import (
	"fmt"
	"slices"
	"sort"

	"github.com/samber/lo"
)

// Row is one record of a Table keyed by header name.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered set of headers and an ordered list of rows.
// A Table is not safe for concurrent use.
type Table struct {
	headers []string
	rows    []Row
}

// New returns an empty table with the given headers.
func New(headers []string) (*Table, error) {
	if dups := lo.FindDuplicates(headers); len(dups) > 0 {
		return nil, InvalidArgumentError{Message: fmt.Sprintf("duplicate header: %s", dups[0])}
	}
	return &Table{headers: slices.Clone(headers)}, nil
}

// FromValues builds a table from rectangular data whose first row holds the
// headers. Short rows are padded with nil.
func FromValues(values [][]any) (*Table, error) {
	if len(values) == 0 {
		return &Table{}, nil
	}
	headers := lo.Map(values[0], func(v any, _ int) string { return Text(v) })
	t, err := New(headers)
	if err != nil {
		return nil, err
	}
	for i, raw := range values[1:] {
		if len(raw) > len(headers) {
			return nil, InvalidArgumentError{Message: fmt.Sprintf("row %d has %d values, want at most %d", i+1, len(raw), len(headers))}
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			if j < len(raw) {
				row[h] = raw[j]
			} else {
				row[h] = nil
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// FromRecords builds a table from keyed records. The headers are the union of
// all record keys in the order they were first seen.
func FromRecords(records []*Record) *Table {
	seen := NewOrderedMap[string, struct{}]()
	for _, rec := range records {
		for _, k := range rec.Keys() {
			seen.Set(k, struct{}{})
		}
	}
	t := &Table{headers: seen.Keys()}
	for _, rec := range records {
		row := make(Row, len(t.headers))
		for _, h := range t.headers {
			v, _ := rec.Get(h)
			row[h] = v
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Headers returns a copy of the header list.
func (t *Table) Headers() []string {
	return slices.Clone(t.headers)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns copies of every row in order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	return t.rows[i].Clone()
}

// Get returns the cell at row i under header.
func (t *Table) Get(i int, header string) any {
	return t.rows[i][header]
}

// Set writes a cell. The header must exist.
func (t *Table) Set(i int, header string, v any) error {
	if t.HeaderIndex(header) < 0 {
		return NotFoundError{Message: fmt.Sprintf("column %s not found", header)}
	}
	if i < 0 || i >= len(t.rows) {
		return InvalidArgumentError{Message: fmt.Sprintf("row %d out of range", i)}
	}
	t.rows[i][header] = v
	return nil
}

// HeaderIndex returns the position of name, or -1.
func (t *Table) HeaderIndex(name string) int {
	return slices.Index(t.headers, name)
}

// HasHeader reports whether name is a header.
func (t *Table) HasHeader(name string) bool {
	return t.HeaderIndex(name) >= 0
}

// Require returns a NotFoundError for the first name that is not a header.
func (t *Table) Require(names ...string) error {
	for _, name := range names {
		if !t.HasHeader(name) {
			return NotFoundError{Message: fmt.Sprintf("column %s not found", name)}
		}
	}
	return nil
}

// HeaderByIndex returns the header at i. Negative indexes count from the end,
// so -1 is the last header. It returns "" when i is out of range.
func (t *Table) HeaderByIndex(i int) string {
	if i < 0 {
		i += len(t.headers)
	}
	if i < 0 || i >= len(t.headers) {
		return ""
	}
	return t.headers[i]
}

// HeadersBetween returns the contiguous headers from start to end inclusive.
// Empty start and end default to the first and last header. When start sits
// after end the list runs backwards, so it always begins with start.
func (t *Table) HeadersBetween(start, end string) ([]string, error) {
	if start == "" {
		start = t.HeaderByIndex(0)
	}
	if end == "" {
		end = t.HeaderByIndex(-1)
	}
	si := t.HeaderIndex(start)
	if si < 0 {
		return nil, NotFoundError{Message: fmt.Sprintf("column %s not found", start)}
	}
	ei := t.HeaderIndex(end)
	if ei < 0 {
		return nil, NotFoundError{Message: fmt.Sprintf("column %s not found", end)}
	}
	first, last := min(si, ei), max(si, ei)
	list := slices.Clone(t.headers[first : last+1])
	if si > ei {
		slices.Reverse(list)
	}
	return list, nil
}

// InsertColumn adds a column filled with nil. It is placed before the header
// named before, or at the end when before is empty.
func (t *Table) InsertColumn(name, before string) error {
	if t.HasHeader(name) {
		return InvalidArgumentError{Message: fmt.Sprintf("column %s already exists", name)}
	}
	at := len(t.headers)
	if before != "" {
		at = t.HeaderIndex(before)
		if at < 0 {
			return NotFoundError{Message: fmt.Sprintf("column %s not found", before)}
		}
	}
	t.headers = slices.Insert(t.headers, at, name)
	for _, r := range t.rows {
		r[name] = nil
	}
	return nil
}

// InsertRows inserts count copies of template before row at. An at of -1
// appends. Headers missing from template are set to nil.
func (t *Table) InsertRows(at, count int, template Row) error {
	if at == -1 {
		at = len(t.rows)
	}
	if at < 0 || at > len(t.rows) {
		return InvalidArgumentError{Message: fmt.Sprintf("row position %d out of range", at)}
	}
	for k := range template {
		if !t.HasHeader(k) {
			return NotFoundError{Message: fmt.Sprintf("column %s not found", k)}
		}
	}
	added := make([]Row, 0, count)
	for i := 0; i < count; i++ {
		row := make(Row, len(t.headers))
		for _, h := range t.headers {
			row[h] = template[h]
		}
		added = append(added, row)
	}
	t.rows = slices.Insert(t.rows, at, added...)
	return nil
}

// AppendRow adds one row at the end.
func (t *Table) AppendRow(r Row) error {
	return t.InsertRows(-1, 1, r)
}

// MoveColumn moves name so it sits before the header named before, or to the
// end when before is empty.
func (t *Table) MoveColumn(name, before string) error {
	from := t.HeaderIndex(name)
	if from < 0 {
		return NotFoundError{Message: fmt.Sprintf("column %s not found", name)}
	}
	if before != "" && !t.HasHeader(before) {
		return NotFoundError{Message: fmt.Sprintf("column %s not found", before)}
	}
	if name == before {
		return nil
	}
	t.headers = slices.Delete(t.headers, from, from+1)
	at := len(t.headers)
	if before != "" {
		at = t.HeaderIndex(before)
	}
	t.headers = slices.Insert(t.headers, at, name)
	return nil
}

// FilterColumns drops every column for which keep returns false.
func (t *Table) FilterColumns(keep func(header string) bool) {
	var dropped []string
	t.headers, dropped = lo.FilterReject(t.headers, func(h string, _ int) bool { return keep(h) })
	for _, r := range t.rows {
		for _, h := range dropped {
			delete(r, h)
		}
	}
}

// FilterRows keeps only the rows for which keep returns true.
func (t *Table) FilterRows(keep func(r Row) bool) {
	t.rows = lo.Filter(t.rows, func(r Row, _ int) bool { return keep(r) })
}

// SelectRows returns the positions of rows whose key cell satisfies match.
func (t *Table) SelectRows(key string, match func(v any) bool) []int {
	var out []int
	for i, r := range t.rows {
		if match(r[key]) {
			out = append(out, i)
		}
	}
	return out
}

// SortBy stably sorts rows by the cell under header.
func (t *Table) SortBy(header string, desc bool) {
	sort.SliceStable(t.rows, func(i, j int) bool {
		c := Compare(t.rows[i][header], t.rows[j][header])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Head returns a copy holding at most the first n rows. n <= 0 keeps all.
func (t *Table) Head(n int) *Table {
	out := t.Clone()
	if n > 0 && n < len(out.rows) {
		out.rows = out.rows[:n]
	}
	return out
}

// Values returns the table as rectangular data, headers first.
func (t *Table) Values() [][]any {
	out := make([][]any, 0, len(t.rows)+1)
	out = append(out, lo.ToAnySlice(t.headers))
	for _, r := range t.rows {
		line := make([]any, len(t.headers))
		for i, h := range t.headers {
			line[i] = r[h]
		}
		out = append(out, line)
	}
	return out
}

// Records returns every row as an ordered record in header order.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.rows))
	for _, r := range t.rows {
		rec := NewRecord()
		for _, h := range t.headers {
			rec.Set(h, r[h])
		}
		out = append(out, rec)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{headers: slices.Clone(t.headers), rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		out.rows[i] = r.Clone()
	}
	return out
}

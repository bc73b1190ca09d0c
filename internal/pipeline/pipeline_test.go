package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

const grades = `Name,Subject,Assignment,Grade
ann,Math,A1,3
ann,Vocation,V1,4
bob,Math,A1,2
ann,Math,A2,4
bob,Math,A2,1
`

const demographics = `Name,GPS,Email
bob,G2,b@example.com
carl,G3,c@example.com
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSamplePipeline(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grades.csv", grades)
	writeFile(t, dir, "demographics.csv", demographics)
	path := writeFile(t, dir, "pipeline.yaml", `
input: grades.csv
steps:
  - filter: '.Subject != "Vocation"'
  - sort: {by: [Name, Assignment]}
  - pivot: {group: Name, column: Assignment, value: Grade}
  - insert_columns: [GPS]
  - join: {source: demographics.csv, key: Name}
  - move_columns: {names: [GPS], before: Name}
output:
  format: html
  columns: [Name, GPS]
  display_names: [Student, Group]
`)

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "html", f.Output.Format)
	assert.Equal(t, []string{"Student", "Group"}, f.Output.DisplayNames)

	res, err := (&Runner{}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	got := res.Table
	assert.Equal(t, []string{"GPS", "Name", "A1", "A2"}, got.Headers())
	assert.Equal(t, [][]any{
		{"GPS", "Name", "A1", "A2"},
		{nil, "ann", "3", "4"},
		{"G2", "bob", "2", "1"},
	}, got.Values())
}

func TestRunUnpivotAndReduce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wide.csv", "Name,Q1,Q2\nann,1,2\n")
	writeFile(t, dir, "template.csv", "Value,Quarter\n")
	f, err := Parse([]byte(`
input: wide.csv
infer_types: true
steps:
  - unpivot: {start: Q1, end: Q2, output_headers: [Quarter, Value], retain: [Name]}
  - reduce: template.csv
`), dir)
	require.NoError(t, err)

	res, err := (&Runner{}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Value", "Quarter"},
		{int64(1), "Q1"},
		{int64(2), "Q2"},
	}, res.Table.Values())
}

func TestRunMapColumnBeforePivot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "grades.csv", `Name,Subject,Assignment,Grade
ann,Math,Quiz,3
ann,Art,Quiz,4
bob,Math,Quiz,2
`)
	f, err := Parse([]byte(`
input: grades.csv
steps:
  - map_column: {name: Assignment, expr: '.Subject + " - " + $value'}
  - sort: Assignment
  - pivot: {group: Name, column: Assignment, value: Grade}
`), dir)
	require.NoError(t, err)

	res, err := (&Runner{}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"Name", "Art - Quiz", "Math - Quiz"},
		{"ann", "4", "3"},
		{"bob", nil, "2"},
	}, res.Table.Values())
}

func TestRunInferTypesAppliesToMainInputOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scores.csv", "Name,Score\nann,1\nbob,2\n")
	writeFile(t, dir, "updates.csv", "Name,Score\nbob,7\n")
	f, err := Parse([]byte(`
input: scores.csv
infer_types: true
steps:
  - join: {source: updates.csv, key: Name}
`), dir)
	require.NoError(t, err)

	res, err := (&Runner{}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Table.Get(0, "Score"))
	assert.Equal(t, "7", res.Table.Get(1, "Score"))

	res, err = (&Runner{InferTypes: true}).Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Table.Get(1, "Score"))
}

func TestRunReadsStdin(t *testing.T) {
	f, err := Parse([]byte("input: '-'\nsteps:\n  - sort: b\n"), "")
	require.NoError(t, err)

	r := &Runner{Stdin: strings.NewReader(`[{"a":1,"b":"y"},{"a":2,"b":"x"}]`)}
	res, err := r.Run(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a", "b"}, {int64(2), "x"}, {int64(1), "y"}}, res.Table.Values())
}

func TestRunStepErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "in.csv", "a,b\n1,2\n")
	writeFile(t, dir, "other.csv", "x,y\n")
	writeFile(t, dir, "same.csv", "a,b\n3,4\n")

	tests := []struct {
		name  string
		steps string
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown column in sort",
			steps: "  - sort: missing\n",
			check: func(t *testing.T, err error) {
				var nf table.NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Contains(t, err.Error(), "step 1 (sort)")
			},
		},
		{
			name:  "reduce without shared headers",
			steps: "  - reduce: other.csv\n",
			check: func(t *testing.T, err error) {
				var es table.EmptySchemaError
				assert.ErrorAs(t, err, &es)
			},
		},
		{
			name:  "pivot on missing column",
			steps: "  - pivot: {group: a, column: nope, value: b}\n",
			check: func(t *testing.T, err error) {
				var nf table.NotFoundError
				assert.ErrorAs(t, err, &nf)
			},
		},
		{
			name:  "insert existing column",
			steps: "  - insert_columns: [a]\n",
			check: func(t *testing.T, err error) {
				var ia table.InvalidArgumentError
				assert.ErrorAs(t, err, &ia)
			},
		},
		{
			name:  "join key in neither table",
			steps: "  - join: {source: same.csv, key: nope}\n",
			check: func(t *testing.T, err error) {
				var nf table.NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Contains(t, err.Error(), "step 1 (join): target: column nope not found")
			},
		},
		{
			name:  "join key missing from source",
			steps: "  - join: {source: other.csv, key: a}\n",
			check: func(t *testing.T, err error) {
				var nf table.NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Contains(t, err.Error(), "source: column a not found")
			},
		},
		{
			name:  "map unknown column",
			steps: "  - map_column: {name: nope, expr: '$value'}\n",
			check: func(t *testing.T, err error) {
				var nf table.NotFoundError
				assert.ErrorAs(t, err, &nf)
				assert.Contains(t, err.Error(), "step 1 (map_column)")
			},
		},
		{
			name:  "missing join source",
			steps: "  - join: {source: nope.csv, key: a}\n",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte("input: in.csv\nsteps:\n"+tt.steps), dir)
			require.NoError(t, err)
			_, err = (&Runner{}).Run(context.Background(), f)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing input", "steps: []\n", "input is required"},
		{"empty step", "input: a.csv\nsteps:\n  - {}\n", "step 1: no operation"},
		{"two operations", "input: a.csv\nsteps:\n  - {filter: '.a', sort: a}\n", "more than one operation"},
		{"unknown key", "input: a.csv\nstepz: []\n", "field stepz not found"},
		{"pivot fields", "input: a.csv\nsteps:\n  - pivot: {group: a}\n", "group, column and value are required"},
		{"join fields", "input: a.csv\nsteps:\n  - join: {source: b.csv}\n", "source and key are required"},
		{"map fields", "input: a.csv\nsteps:\n  - map_column: {name: a}\n", "name and expr are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPathResolution(t *testing.T) {
	f := &File{Dir: "/data"}
	assert.Equal(t, filepath.Join("/data", "in.csv"), f.Path("in.csv"))
	assert.Equal(t, "/abs/in.csv", f.Path("/abs/in.csv"))
	assert.Equal(t, "-", f.Path("-"))
}

func TestStepName(t *testing.T) {
	assert.Equal(t, "filter", Step{Filter: ".a"}.Name())
	assert.Equal(t, "reduce", Step{Reduce: &ReduceStep{Source: "x"}}.Name())
	assert.Equal(t, "map_column", Step{MapColumn: &MapStep{Name: "a", Expr: "$value"}}.Name())
	assert.Equal(t, "", Step{}.Name())
}

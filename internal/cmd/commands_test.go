package cmd

import (
	"encoding/json"
	"io"
	"strings"
	"testing"
)

const gradesCSV = `Name,Subject,Assignment,Grade
ann,Math,A1,3
bob,Math,A1,2
ann,Vocation,V1,9
ann,Math,A2,4
ann,Math,A1,5
`

func TestPivotCommand(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "grades.csv", gradesCSV)

	res := runCLI(t, "", "pivot", path, "--group", "Name", "--column", "Assignment", "--value", "Grade",
		"--where", `.Subject != "Vocation"`, "-o", "csv")
	if res.err != nil {
		t.Fatalf("pivot: %v (stderr %q)", res.err, res.stderr)
	}
	want := "Name,A1,A2\nann,5,4\nbob,2,\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestPivotCommandSortsInputFirst(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "grades.csv", gradesCSV)

	res := runCLI(t, "", "pivot", path, "-g", "Name", "-c", "Assignment", "--value", "Grade",
		"--sort-by", "Assignment", "--sort-desc", "-o", "csv")
	if res.err != nil {
		t.Fatalf("pivot: %v", res.err)
	}
	if !strings.HasPrefix(res.stdout, "Name,V1,A2,A1\n") {
		t.Fatalf("unexpected header order: %q", res.stdout)
	}
}

func TestPivotCommandJSONTypes(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "grades.csv", gradesCSV)

	res := runCLI(t, "", "pivot", path, "-g", "Name", "-c", "Assignment", "--value", "Grade", "--infer-types")
	if res.err != nil {
		t.Fatalf("pivot: %v", res.err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal([]byte(res.stdout), &rows); err != nil {
		t.Fatalf("parse output: %v\n%s", err, res.stdout)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["A1"] != float64(5) || rows[1]["A2"] != nil {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestPivotCommandMissingColumn(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "grades.csv", gradesCSV)

	res := runCLI(t, "", "pivot", path, "-g", "Name", "-c", "Nope", "--value", "Grade")
	if res.err == nil {
		t.Fatal("expected error")
	}
	var envelope struct {
		Error struct {
			Message  string `json:"message"`
			Type     string `json:"type"`
			Category string `json:"category"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(res.stderr), &envelope); err != nil {
		t.Fatalf("stderr is not a json envelope: %v\n%s", err, res.stderr)
	}
	if envelope.Error.Type != "not_found" || envelope.Error.Category != "user" {
		t.Fatalf("unexpected envelope: %+v", envelope.Error)
	}
	if envelope.Error.Message != "column Nope not found" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestPivotCommandMapsColumnFirst(t *testing.T) {
	const csv = "Name,Subject,Assignment,Grade\nann,Math,Quiz,3\nann,Art,Quiz,4\nbob,Math,Quiz,2\n"

	res := runCLI(t, csv, "pivot", "-g", "Name", "-c", "Assignment", "--value", "Grade",
		"--map", `Assignment=.Subject + " - " + $value`, "--sort-by", "Assignment", "-o", "csv")
	if res.err != nil {
		t.Fatalf("pivot: %v (stderr %q)", res.err, res.stderr)
	}
	want := "Name,Art - Quiz,Math - Quiz\nann,4,3\nbob,,2\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestPrepMapValidation(t *testing.T) {
	tests := []struct {
		name string
		m    string
		want string
	}{
		{"no separator", "Assignment", `"type":"validation"`},
		{"empty expression", "Assignment=", `"type":"validation"`},
		{"unknown column", "Nope=$value", `"type":"not_found"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "Assignment\nQuiz\n", "show", "--map", tt.m, "--error-format", "json")
			if res.err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(res.stderr, tt.want) {
				t.Fatalf("stderr = %q, want %s", res.stderr, tt.want)
			}
		})
	}
}

func TestPivotCommandRequiresFlags(t *testing.T) {
	res := runCLI(t, "a\n1\n", "pivot", "--group", "a")
	if res.err == nil || !strings.Contains(res.err.Error(), "required flag") {
		t.Fatalf("expected required flag error, got %v", res.err)
	}
}

func TestUnpivotCommand(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "wide.csv", "Name,Q1,Q2,Q3\nann,1,2,3\nbob,4,5,6\n")

	res := runCLI(t, "", "unpivot", path, "--start", "Q2", "--end", "Q1",
		"--output-headers", "Quarter,Score", "--retain", "Name", "-o", "csv")
	if res.err != nil {
		t.Fatalf("unpivot: %v", res.err)
	}
	want := "Quarter,Score,Name\nQ2,2,ann\nQ1,1,ann\nQ2,5,bob\nQ1,4,bob\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestUnpivotCommandDefaults(t *testing.T) {
	res := runCLI(t, "a,b\n1,2\n", "unpivot", "-o", "csv")
	if res.err != nil {
		t.Fatalf("unpivot: %v", res.err)
	}
	if res.stdout != "Col1,Col2\na,1\nb,2\n" {
		t.Fatalf("unexpected output: %q", res.stdout)
	}
}

func TestUnpivotCommandValidation(t *testing.T) {
	res := runCLI(t, "a,b\n1,2\n", "unpivot", "--output-headers", "only", "--error-format", "json")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(res.stderr, `"type":"validation"`) {
		t.Fatalf("expected validation envelope, got %q", res.stderr)
	}
}

const targetCSV = `Name,GPS,Side
ann,,L
bob,G1,R
`

const sourceCSV = `Name,GPS,Email
bob,G2,b@example.com
carl,G3,c@example.com
`

func TestJoinCommand(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "target.csv", targetCSV)
	source := writeFixture(t, dir, "source.csv", sourceCSV)

	res := runCLI(t, "", "join", target, source, "--key", "Name", "-o", "csv")
	if res.err != nil {
		t.Fatalf("join: %v", res.err)
	}
	want := "Name,GPS,Side\nann,,L\nbob,G2,R\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}

	res = runCLI(t, "", "join", target, source, "-k", "Name", "--append-rows", "--append-columns", "-o", "csv")
	if res.err != nil {
		t.Fatalf("join: %v", res.err)
	}
	want = "Name,GPS,Side,Email\nann,,L,\nbob,G2,R,b@example.com\ncarl,G3,,c@example.com\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}
}

func TestJoinCommandUnknownKey(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "target.csv", "Name,Grade\nann,A\nbob,B\n")
	source := writeFixture(t, dir, "source.csv", "Name,Grade\ncat,C\ndan,D\n")

	res := runCLI(t, "", "join", target, source, "--key", "Nmae", "--error-format", "json")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(res.stderr, `"type":"not_found"`) || !strings.Contains(res.stderr, "target: column Nmae not found") {
		t.Fatalf("unexpected envelope: %q", res.stderr)
	}
	if res.stdout != "" {
		t.Fatalf("expected no output, got %q", res.stdout)
	}

	other := writeFixture(t, dir, "other.csv", "ID,Grade\n1,C\n")
	res = runCLI(t, "", "join", target, other, "--key", "Name", "--error-format", "json")
	if res.err == nil || !strings.Contains(res.stderr, "source: column Name not found") {
		t.Fatalf("expected missing source key error, got %v %q", res.err, res.stderr)
	}
}

func TestReduceCommandEmptySchema(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "target.csv", "a,b\n1,2\n")
	source := writeFixture(t, dir, "source.csv", "x,y\n3,4\n")

	res := runCLI(t, "", "reduce", target, source, "--error-format", "json")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(res.stderr, `"type":"empty_schema"`) || !strings.Contains(res.stderr, `"category":"user"`) {
		t.Fatalf("unexpected envelope: %q", res.stderr)
	}
	if res.stdout != "" {
		t.Fatalf("expected no output, got %q", res.stdout)
	}
}

func TestJoinCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "target.csv", targetCSV)

	res := runCLI(t, "", "join", target, dir+"/missing.csv", "--key", "Name", "--error-format", "json")
	if res.err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(res.stderr, `"type":"io"`) {
		t.Fatalf("unexpected envelope: %q", res.stderr)
	}
}

func TestReduceCommand(t *testing.T) {
	dir := t.TempDir()
	target := writeFixture(t, dir, "target.csv", targetCSV)
	template := writeFixture(t, dir, "template.csv", "Side,Name,Extra\n")

	res := runCLI(t, "", "reduce", target, template, "-o", "csv")
	if res.err != nil {
		t.Fatalf("reduce: %v", res.err)
	}
	if res.stdout != "Side,Name\nL,ann\nR,bob\n" {
		t.Fatalf("unexpected output: %q", res.stdout)
	}
}

func TestRenderCommand(t *testing.T) {
	input := "Name,Note\nann,<b>hi</b>\n"

	res := runCLI(t, input, "render")
	if res.err != nil {
		t.Fatalf("render: %v", res.err)
	}
	want := `<table style="border:1.5px solid black;border-collapse:collapse;text-align:center" border = 1.5 cellpadding = 5>` +
		`<tr><td><b>Name</b></td><td><b>Note</b></td></tr>` +
		`<tr><td>ann</td><td>&lt;b&gt;hi&lt;/b&gt;</td></tr></table>` + "\n"
	if res.stdout != want {
		t.Fatalf("stdout = %q, want %q", res.stdout, want)
	}

	res = runCLI(t, input, "render", "--raw-html", "--columns", "Note", "--display-names", "Comment")
	if res.err != nil {
		t.Fatalf("render: %v", res.err)
	}
	if !strings.Contains(res.stdout, "<tr><td><b>Comment</b></td></tr><tr><td><b>hi</b></td></tr>") {
		t.Fatalf("unexpected raw output: %q", res.stdout)
	}

	res = runCLI(t, input, "render", "--columns", "Note", "--cell-order", "row")
	if res.err != nil {
		t.Fatalf("render: %v", res.err)
	}
	if !strings.Contains(res.stdout, "<tr><td><b>Note</b></td></tr><tr><td>ann</td><td>&lt;b&gt;hi&lt;/b&gt;</td></tr>") {
		t.Fatalf("unexpected row-order output: %q", res.stdout)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	res := runCLI(t, "a,b\n1,2\n", "render", "--columns", "a,b", "--display-names", "A")
	if res.err == nil || !strings.Contains(res.err.Error(), "display names") {
		t.Fatalf("expected display name error, got %v", res.err)
	}

	res = runCLI(t, "a,b\n", "render")
	if res.err == nil || !strings.Contains(res.err.Error(), "must have data") {
		t.Fatalf("expected empty table error, got %v", res.err)
	}

	res = runCLI(t, "a,b\n1,2\n", "render", "--cell-order", "diagonal")
	if res.err == nil {
		t.Fatal("expected cell order error")
	}
}

func TestShowCommandAgentOptions(t *testing.T) {
	input := `[{"name":"a","n":2},{"name":"b","n":10},{"name":"c","n":5}]`

	res := runCLI(t, input, "show", "--result-sort-by", "n", "--result-desc", "--result-limit", "2", "-o", "csv")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if res.stdout != "name,n\nb,10\nc,5\n" {
		t.Fatalf("unexpected output: %q", res.stdout)
	}

	res = runCLI(t, input, "show", "--query", "[.[] | select(.n > 3) | .name]", "-o", "json")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	var names []string
	if err := json.Unmarshal([]byte(res.stdout), &names); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if strings.Join(names, ",") != "b,c" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestShowCommandQueryFile(t *testing.T) {
	dir := t.TempDir()
	query := writeFixture(t, dir, "q.jq", ".[0].name\n")

	res := runCLI(t, `[{"name":"a"}]`, "show", "--query-file", query, "-o", "json")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != `"a"` {
		t.Fatalf("unexpected output: %q", res.stdout)
	}

	res = runCLI(t, `[]`, "show", "--query", ".", "--query-file", query)
	if res.err == nil || !strings.Contains(res.err.Error(), "only one of") {
		t.Fatalf("expected conflict error, got %v", res.err)
	}
}

func TestShowCommandNestedJSON(t *testing.T) {
	res := runCLI(t, `{"id":1,"meta":{"tag":"x"}}`+"\n", "show", "--input-format", "ndjson", "-o", "csv")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if res.stdout != "id,meta.tag\n1,x\n" {
		t.Fatalf("unexpected output: %q", res.stdout)
	}
}

func TestShowCommandNoInput(t *testing.T) {
	prev := stdinHasData
	stdinHasData = func(io.Reader) bool { return false }
	defer func() { stdinHasData = prev }()

	res := runCLI(t, "", "show")
	if res.err == nil || !strings.Contains(res.err.Error(), "no input") {
		t.Fatalf("expected no input error, got %v", res.err)
	}
}

func TestShowCommandTextFormats(t *testing.T) {
	res := runCLI(t, "a,bb\n1,2\n", "show", "-o", "text")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if res.stdout != "a  bb\n1  2\n" {
		t.Fatalf("unexpected text output: %q", res.stdout)
	}

	res = runCLI(t, "a,bb\n1,2\n", "show", "-o", "table")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if !strings.Contains(res.stdout, "| a | bb |") {
		t.Fatalf("unexpected table output: %q", res.stdout)
	}
}

func TestInvalidFormats(t *testing.T) {
	res := runCLI(t, "a\n1\n", "show", "-o", "xml")
	if res.err == nil || !strings.Contains(res.err.Error(), "invalid") {
		t.Fatalf("expected output format error, got %v", res.err)
	}

	res = runCLI(t, "a\n1\n", "show", "--input-format", "xls")
	if res.err == nil || !strings.Contains(res.err.Error(), "invalid input format") {
		t.Fatalf("expected input format error, got %v", res.err)
	}

	res = runCLI(t, "a\n1\n", "show", "--error-format", "xml")
	if res.err == nil || !strings.Contains(res.err.Error(), "--error-format") {
		t.Fatalf("expected error format error, got %v", res.err)
	}
}

func TestDebugLogsToStderr(t *testing.T) {
	res := runCLI(t, "a\n1\n", "show", "--debug", "-o", "csv")
	if res.err != nil {
		t.Fatalf("show: %v", res.err)
	}
	if !strings.Contains(res.stderr, "command start") || !strings.Contains(res.stderr, "table loaded") {
		t.Fatalf("expected debug logs, got %q", res.stderr)
	}
	if res.stdout != "a\n1\n" {
		t.Fatalf("logs leaked into stdout: %q", res.stdout)
	}
}

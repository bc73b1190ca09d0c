package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadInputSource(t *testing.T) {
	if _, err := readInputSource("  ", nil); err == nil {
		t.Fatal("expected error for empty source")
	}

	path := filepath.Join(t.TempDir(), "query.jq")
	if err := os.WriteFile(path, []byte("  .[] | .name \n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := readInputSource(path, nil)
	if err != nil {
		t.Fatalf("readInputSource: %v", err)
	}
	if got != ".[] | .name" {
		t.Fatalf("got %q", got)
	}

	got, err = readInputSource("-", strings.NewReader("\n.a\n"))
	if err != nil {
		t.Fatalf("readInputSource stdin: %v", err)
	}
	if got != ".a" {
		t.Fatalf("got %q", got)
	}

	if _, err := readInputSource(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestInputHasData(t *testing.T) {
	if !inputHasData(strings.NewReader("")) {
		t.Error("non-file readers are treated as having data")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	if !inputHasData(r) {
		t.Error("expected pipe to report data")
	}
}

func TestReadTableArg(t *testing.T) {
	restore := snapshotCLIState()
	defer restore()

	path := filepath.Join(t.TempDir(), "t.json")
	if err := os.WriteFile(path, []byte(`[{"a":1}]`), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ctx := withIO(context.Background(), strings.NewReader("x,y\n1,2\n"), nil, nil)

	fromFile, err := readTableArg(ctx, []string{path})
	if err != nil {
		t.Fatalf("readTableArg file: %v", err)
	}
	if got := fromFile.Headers(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("unexpected headers: %v", got)
	}

	fromStdin, err := readTableArg(ctx, nil)
	if err != nil {
		t.Fatalf("readTableArg stdin: %v", err)
	}
	if got := fromStdin.Headers(); len(got) != 2 || got[1] != "y" {
		t.Fatalf("unexpected headers: %v", got)
	}
}
